package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rescue/internal/batch"
)

func newBatchCommand(ctx *cliContext) *cobra.Command {
	var (
		cfg        batch.Config
		sqlitePath string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse every script in a directory and write a corpus summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.InputDir == "" {
				return errors.New("--input is required")
			}
			prof, err := ctx.profile()
			if err != nil {
				return err
			}
			cfg.Profile = prof
			cfg.SlackToken = ctx.cfg.SlackBotToken
			cfg.SlackChannel = ctx.cfg.SlackChannel

			docs, closeStore, err := openStore(cmd.Context(), ctx.cfg, sqlitePath, ctx.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			bus, err := connectBus(cmd.Context(), ctx.cfg, ctx.logger)
			if err != nil {
				return fmt.Errorf("connect NATS: %w", err)
			}
			var pub batch.Publisher
			if bus != nil {
				defer bus.Close()
				pub = bus
			}

			report, err := batch.NewRunner(cfg, docs, pub, ctx.logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintln(out, renderReport(report))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.InputDir, "input", "i", "", "Directory of scraped scripts (.json, .txt, .html)")
	flags.StringVarP(&cfg.OutputDir, "output", "o", "parsed", "Directory for parsed documents and summary.json")
	flags.IntVarP(&cfg.Workers, "workers", "w", ctx.cfg.Workers, "Parallel parse workers")
	flags.StringVar(&cfg.StatePath, "state", "", "Progress file for resumable runs")
	flags.BoolVar(&cfg.Resume, "resume", false, "Skip files the state file lists as processed")
	flags.StringVar(&sqlitePath, "sqlite", ctx.cfg.SQLitePath, "Also store documents in this SQLite database")
	flags.BoolVar(&jsonOut, "json", false, "Print the run report as JSON")
	return cmd
}

func renderReport(r batch.Report) string {
	s := r.Summary
	overview := renderTable(
		[]string{"Run", "Value"},
		[][]string{
			{"run id", r.RunID},
			{"files", strconv.Itoa(r.Total)},
			{"processed", strconv.Itoa(r.Processed)},
			{"skipped", strconv.Itoa(r.Skipped)},
			{"errors", strconv.Itoa(r.Errors)},
			{"high confidence", fmt.Sprintf("%d (%.1f%%)", s.Quality.HighConfidence, s.Quality.HighPercent)},
			{"with dialogue", fmt.Sprintf("%d (%.1f%%)", s.Quality.WithDialogue, s.Quality.DialoguePercent)},
			{"avg scenes", fmt.Sprintf("%.1f", s.AvgMetrics.AvgScenes)},
			{"avg runtime", fmt.Sprintf("%.1f min", s.AvgMetrics.AvgRuntime)},
		},
		1,
	)
	if len(s.TopExamples) == 0 {
		return overview
	}

	rows := make([][]string, 0, len(s.TopExamples))
	for _, ex := range s.TopExamples {
		rows = append(rows, []string{
			ex.Slug, ex.Genre,
			strconv.Itoa(ex.Scenes), strconv.Itoa(ex.Characters), strconv.Itoa(ex.Dialogues), strconv.Itoa(ex.Quality),
		})
	}
	return overview + "\n" + renderTable(
		[]string{"Slug", "Genre", "Scenes", "Characters", "Dialogues", "Quality"},
		rows,
		2, 3, 4, 5,
	)
}
