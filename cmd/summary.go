package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/abhisek/datagen/internal/generator"
	"github.com/abhisek/datagen/internal/llm"
	"github.com/abhisek/datagen/internal/record"
	"github.com/abhisek/datagen/internal/ui/theme"
)

// datasetStats describes a processed dataset.
type datasetStats struct {
	Records     int
	Valid       int
	Augmented   int
	Scored      int
	MeanScore   float64
	AboveMin    int
	Entities    map[string]int
	Domains     map[string]int
	ErrorMarked int
}

func describe(recs []*record.Record, minScore float64) datasetStats {
	s := datasetStats{
		Records:  len(recs),
		Entities: map[string]int{},
		Domains:  map[string]int{},
	}
	var total float64
	for _, r := range recs {
		s.Domains[r.EffectiveDomain()]++
		if r.Metadata.IsValid() {
			s.Valid++
		}
		if r.Metadata.Augmented {
			s.Augmented++
		}
		if score, ok := r.Metadata.Score(); ok {
			s.Scored++
			total += score
			if score >= minScore {
				s.AboveMin++
			}
		}
		for kind, matches := range r.Metadata.Entities {
			s.Entities[kind] += len(matches)
		}
		if strings.HasPrefix(r.Response, generator.ErrorMarker) {
			s.ErrorMarked++
		}
	}
	if s.Scored > 0 {
		s.MeanScore = total / float64(s.Scored)
	}
	return s
}

// datasetRows renders the rows shared by every summary.
func datasetRows(s datasetStats, minScore float64) []string {
	rows := []string{
		theme.Row("Records", theme.Value.Render(fmt.Sprint(s.Records))),
		theme.Row("Valid", theme.Ratio(s.Valid, s.Records).Render(fmt.Sprintf("%d/%d", s.Valid, s.Records))),
	}
	if s.Scored > 0 {
		rows = append(rows,
			theme.Row("Mean quality score", theme.Value.Render(fmt.Sprintf("%.2f", s.MeanScore))),
			theme.Row(fmt.Sprintf("Score >= %.2f", minScore), theme.Ratio(s.AboveMin, s.Scored).Render(fmt.Sprintf("%d/%d", s.AboveMin, s.Scored))),
		)
	}
	if s.Augmented > 0 {
		rows = append(rows, theme.Row("Augmented variants", theme.Value.Render(fmt.Sprint(s.Augmented))))
	}
	if s.ErrorMarked > 0 {
		rows = append(rows, theme.Row("Failed generations", theme.Bad.Render(fmt.Sprint(s.ErrorMarked))))
	}
	for _, d := range slices.Sorted(maps.Keys(s.Domains)) {
		rows = append(rows, theme.Row("Domain "+d, fmt.Sprint(s.Domains[d])))
	}
	for _, k := range slices.Sorted(maps.Keys(s.Entities)) {
		rows = append(rows, theme.Row("Entities "+k, fmt.Sprint(s.Entities[k])))
	}
	return rows
}

func printRunSummary(w io.Writer, title string, run runStats, recs []*record.Record, extra ...string) {
	minScore := appCfg.Processing.MinQualityScore
	rows := []string{
		theme.Row("Input records", fmt.Sprint(run.Input)),
		theme.Row("Kept after pipeline", theme.Ratio(run.Processed, run.Input).Render(fmt.Sprintf("%d/%d", run.Processed, run.Input))),
	}
	rows = append(rows, datasetRows(describe(recs, minScore), minScore)...)
	rows = append(rows, extra...)
	fmt.Fprintln(w, theme.Panel(title, rows...))
}

// usageRows renders token usage and, when the model is priced, its cost.
func usageRows(model string, u llm.Usage, failures int) []string {
	rows := []string{
		theme.Row("Model", model),
		theme.Row("Tokens in/out", fmt.Sprintf("%d / %d", u.InputTokens, u.OutputTokens)),
	}
	if cost, ok := llm.EstimateCost(model, u); ok {
		rows = append(rows, theme.Row("Estimated cost", fmt.Sprintf("$%.4f", cost)))
	}
	if failures > 0 {
		rows = append(rows, theme.Row("Provider failures", theme.Bad.Render(fmt.Sprint(failures))))
	}
	return rows
}
