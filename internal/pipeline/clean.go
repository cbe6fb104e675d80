package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/datagen/internal/record"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Cleaner collapses whitespace in the prompt and response and strips
// **bold** markers from the response.
type Cleaner struct {
	clock
}

// NewCleaner returns a Cleaner that timestamps steps with now.
func NewCleaner(now func() time.Time) *Cleaner {
	return &Cleaner{clock{now}}
}

func (c *Cleaner) Name() string { return StepClean }

func (c *Cleaner) Apply(rec *record.Record) (*record.Record, error) {
	out := rec.Clone()
	out.Input = collapseSpace(out.Input)
	out.Response = boldPattern.ReplaceAllString(collapseSpace(out.Response), "$1")
	out.AddStep(StepClean, c.stamp(), nil)
	return out, nil
}

// collapseSpace replaces every whitespace run with one space and trims
// both ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
