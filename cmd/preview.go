package cmd

import (
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/datagen/internal/llm"
	"github.com/abhisek/datagen/internal/logging"
	"github.com/abhisek/datagen/internal/pipeline"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/templates"
	"github.com/abhisek/datagen/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview filled prompts for a domain (nothing is written)",
	Long: `Fill a few templates for a domain and print the prompts with the parameter
values that were chosen.

With --ask each prompt is also sent to the model from the environment and the
answer is shown with its validation verdict, quality score and entities. This
is a developer tool for checking template and answer quality; no dataset or
trace files are written.`,
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.String("domain", "finance", "Domain to preview")
	f.Int("count", 3, "Number of prompts to fill")
	f.Uint64("seed", 0, "Seed for template filling (0 picks one from the clock)")
	f.String("templates", "", "Template file (default from config)")
	f.Bool("ask", false, "Send each prompt to the model and score the answer")
}

func runPreview(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	domain, _ := f.GetString("domain")
	count, _ := f.GetInt("count")
	seed, _ := f.GetUint64("seed")
	path, _ := f.GetString("templates")
	ask, _ := f.GetBool("ask")

	if count <= 0 {
		return fmt.Errorf("invalid count %d: must be positive", count)
	}
	if path == "" {
		path = appCfg.Generation.TemplatePath
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	domain = strings.ToLower(domain)

	store := templates.Load(path, logging.Named(logger, "templates"))
	filler := templates.NewSeededFiller(seed)
	w := cmd.OutOrStdout()

	var (
		provider llm.Provider
		proc     *pipeline.Pipeline
	)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if ask {
		var err error
		provider, err = llm.NewProviderFromEnv(ctx, logging.Named(logger, "llm"))
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		proc = pipeline.New(appCfg, pipeline.WithLogger(logging.Named(logger, "pipeline")))
	}

	for i := 1; i <= count; i++ {
		p, err := filler.FillDomain(store, domain)
		if err != nil {
			return err
		}
		rows := []string{
			theme.Row("Template", fmt.Sprint(p.TemplateID)),
			theme.Row("Prompt", p.Text),
		}
		for _, name := range slices.Sorted(maps.Keys(p.Parameters)) {
			rows = append(rows, theme.Row("  "+name, theme.Hint.Render(p.Parameters[name])))
		}

		if ask {
			req := llm.UserPrompt(p.Text, appCfg.Generation.MaxTokens, appCfg.Generation.Temperature)
			resp, err := provider.Generate(llm.WithPurpose(ctx, "preview"), req)
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			rec, err := proc.ProcessItem(record.New(domain, p.Text, resp.Text, time.Now()))
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			rows = append(rows, answerRows(rec)...)
		}

		fmt.Fprintln(w, theme.Panel(fmt.Sprintf("Prompt %d/%d", i, count), rows...))
	}
	return nil
}

func answerRows(rec *record.Record) []string {
	rows := []string{theme.Row("Answer", rec.Response)}
	if v := rec.Metadata.Validation; v != nil {
		if v.IsValid {
			rows = append(rows, theme.Row("Valid", theme.Good.Render("yes")))
		} else {
			rows = append(rows, theme.Row("Valid", theme.Bad.Render(strings.Join(v.Issues, "; "))))
		}
	}
	if score, ok := rec.Metadata.Score(); ok {
		rows = append(rows, theme.Row("Quality score", fmt.Sprintf("%.2f", score)))
	}
	for _, k := range slices.Sorted(maps.Keys(rec.Metadata.Entities)) {
		rows = append(rows, theme.Row("  "+k, strings.Join(rec.Metadata.Entities[k], ", ")))
	}
	return rows
}
