package pipeline

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/datagen/internal/record"
)

var numberedPoint = regexp.MustCompile(`\d+\.\s`)

// QualityScorer assigns a heuristic quality score in [0, 1].
type QualityScorer struct {
	clock
}

// NewQualityScorer returns a QualityScorer that timestamps steps with now.
func NewQualityScorer(now func() time.Time) *QualityScorer {
	return &QualityScorer{clock{now}}
}

func (s *QualityScorer) Name() string { return StepScore }

func (s *QualityScorer) Apply(rec *record.Record) (*record.Record, error) {
	out := rec.Clone()
	raw := Score(out.Response, out.Metadata.IsValid())
	rounded := math.Round(raw*100) / 100
	out.Metadata.QualityScore = &rounded
	out.AddStep(StepScore, s.stamp(), map[string]any{"score": raw})
	return out, nil
}

// Score computes the clamped, unrounded score for a response. The weights
// are a fixed contract shared with downstream consumers of the score.
func Score(response string, valid bool) float64 {
	score := 0.5

	n := utf8.RuneCountInString(response)
	if n > 200 {
		score += 0.1
	}
	if n > 500 {
		score += 0.1
	}

	if numberedPoint.MatchString(response) {
		score += 0.05
	}

	if meanWordLength(response) > 5 {
		score += 0.05
	}

	if valid {
		score += 0.2
	} else {
		score -= 0.3
	}

	return math.Max(0, math.Min(1, score))
}

func meanWordLength(s string) float64 {
	words := strings.Fields(s)
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	return float64(total) / float64(max(1, len(words)))
}
