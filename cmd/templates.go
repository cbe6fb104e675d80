package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/datagen/internal/logging"
	"github.com/abhisek/datagen/internal/templates"
	"github.com/abhisek/datagen/internal/ui/theme"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the prompt templates available per domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, _ := cmd.Flags().GetString("domain")
		path, _ := cmd.Flags().GetString("templates")
		if path == "" {
			path = appCfg.Generation.TemplatePath
		}

		store := templates.Load(path, logging.Named(logger, "templates"))
		selected := store.Domains()
		if domain != "" {
			selected = []string{strings.ToLower(domain)}
		}

		w := cmd.OutOrStdout()
		for _, d := range selected {
			ts := store.ForDomain(d)
			if len(ts) == 0 {
				fmt.Fprintln(w, theme.Warn.Render(fmt.Sprintf("no templates for %s", d)))
				continue
			}
			rows := make([]string, 0, len(ts))
			for i, t := range ts {
				rows = append(rows, theme.Row(fmt.Sprintf("#%d", i), t.Text))
				for _, s := range t.Parameters {
					rows = append(rows, theme.Row("  "+s.Marker(), theme.Hint.Render(strings.Join(s.Values, " | "))))
				}
			}
			fmt.Fprintln(w, theme.Panel(fmt.Sprintf("%s (%d)", d, len(ts)), rows...))
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().String("domain", "", "Only list templates for this domain")
	templatesCmd.Flags().String("templates", "", "Template file (default from config)")
}
