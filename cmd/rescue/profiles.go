package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/rescue/internal/profile"
)

func newProfilesCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in heuristic profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(profile.Names()))
			for _, name := range profile.Names() {
				p, err := profile.Named(name)
				if err != nil {
					return err
				}
				genres := make([]string, 0, len(p.Genres))
				for _, g := range p.Genres {
					genres = append(genres, g.Label)
				}
				rows = append(rows, []string{
					p.Name,
					strings.Join(genres, ", "),
					strconv.Itoa(p.WordsPerMinute),
					fmt.Sprintf("%d/%d/%d/%d", p.Limits.Characters, p.Limits.Locations, p.Limits.Dialogues, p.Limits.Scenes),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Profile", "Genres", "WPM", "Limits (chars/locs/dialogue/scenes)"},
				rows,
				2,
			))
			return nil
		},
	}
	cmd.AddCommand(newProfileShowCommand(ctx))
	return cmd
}

func newProfileShowCommand(ctx *cliContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Print a profile; without NAME, the one selected by --profile/--profile-file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   profile.Profile
				err error
			)
			if len(args) == 1 {
				p, err = profile.Named(args[0])
			} else {
				p, err = ctx.profile()
			}
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "yaml", "yml":
				data, err = yaml.Marshal(p)
			case "toml":
				data, err = toml.Marshal(p)
			case "json":
				data, err = json.MarshalIndent(p, "", "  ")
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
			if err != nil {
				return fmt.Errorf("encode profile: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, toml, json)")
	return cmd
}
