package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rescue/internal/catalog"
)

func newMatchCommand(ctx *cliContext) *cobra.Command {
	var filmsPath, parsedDir, reportPath string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Cross-reference parsed scripts against a film slug list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filmsPath == "" {
				return errors.New("--films is required")
			}
			films, err := catalog.LoadFilms(filmsPath)
			if err != nil {
				return err
			}
			scripts, err := catalog.ScriptSlugs(parsedDir)
			if err != nil {
				return err
			}

			res := catalog.Match(films, scripts)
			ctx.logger.Info("catalog matched",
				"films", res.Stats.TotalFilms,
				"scripts", res.Stats.TotalScripts,
				"matches", res.Stats.MatchesFound,
			)

			if reportPath != "" {
				data, err := json.MarshalIndent(catalog.NewReport(res, catalog.ReportSize), "", "  ")
				if err != nil {
					return fmt.Errorf("marshal report: %w", err)
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Catalog", "Value"},
				[][]string{
					{"films", strconv.Itoa(res.Stats.TotalFilms)},
					{"scripts", strconv.Itoa(res.Stats.TotalScripts)},
					{"matches", strconv.Itoa(res.Stats.MatchesFound)},
					{"match rate", fmt.Sprintf("%.1f%%", res.Stats.MatchPercentage)},
					{"scripts without film", strconv.Itoa(len(res.UnmatchedScripts))},
					{"films without script", strconv.Itoa(len(res.UnmatchedFilms))},
				},
				1,
			))

			if len(res.Matches) > 0 {
				rows := make([][]string, 0, 5)
				for _, m := range res.Matches[:min(5, len(res.Matches))] {
					rows = append(rows, []string{m.Script, m.Film})
				}
				fmt.Fprintln(out, renderTable([]string{"Script", "Film"}, rows))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filmsPath, "films", "", "JSON array of film slugs")
	flags.StringVar(&parsedDir, "parsed", "parsed", "Directory of parsed documents")
	flags.StringVar(&reportPath, "report", "cinema_matching_report.json", "Where to write the review report (empty to skip)")
	return cmd
}
