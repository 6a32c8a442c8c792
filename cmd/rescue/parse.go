package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rescue/internal/batch"
	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/schema"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

func newParseCommand(ctx *cliContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a single script and print the recovered structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := ctx.profile()
			if err != nil {
				return err
			}
			raw, err := batch.LoadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := document.Parse(raw, prof)
			if err != nil {
				return err
			}
			if err := schema.Validate(doc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			fmt.Fprintln(out, renderDocument(doc))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full parsed document as JSON")
	return cmd
}

func renderDocument(doc screenplay.ParsedDocument) string {
	m := doc.Metrics
	genre := doc.Genre.Primary
	if doc.Genre.Secondary != "" {
		genre += " / " + doc.Genre.Secondary
	}
	lead := "-"
	if p := doc.Protagonist; p != nil {
		lead = fmt.Sprintf("%s (%.2f)", p.Name, p.Confidence)
		if p.IsEnsemble {
			lead += " ensemble"
		}
	}

	var sb strings.Builder
	sb.WriteString(renderTable(
		[]string{doc.Title, ""},
		[][]string{
			{"slug", doc.Slug},
			{"genre", genre},
			{"scenes", strconv.Itoa(m.TotalScenes)},
			{"runtime", fmt.Sprintf("%d min", m.EstimatedRuntime)},
			{"characters", strconv.Itoa(m.UniqueCharacters)},
			{"dialogues", strconv.Itoa(m.DialogueCount)},
			{"protagonist", lead},
			{"quality", fmt.Sprintf("%s (%d)", doc.Quality.Confidence, doc.Quality.Score)},
		},
	))

	if len(doc.Characters) > 0 {
		rows := make([][]string, 0, len(doc.Characters))
		for _, c := range doc.Characters {
			rows = append(rows, []string{c.Name, strconv.Itoa(c.ScenesPresent), strconv.Itoa(c.DialogueLines), strconv.Itoa(c.TotalWords)})
		}
		sb.WriteString("\n")
		sb.WriteString(renderTable([]string{"Character", "Scenes", "Lines", "Words"}, rows, 1, 2, 3))
	}
	return sb.String()
}
