package pipeline

import (
	"regexp"
	"time"

	"github.com/abhisek/datagen/internal/record"
)

// EntityType names a kind of entity found in a response.
type EntityType string

const (
	EntityMonetary   EntityType = "monetary_value"
	EntityPercentage EntityType = "percentage"
	EntityDate       EntityType = "date"
	EntityEmail      EntityType = "email"
	EntityURL        EntityType = "url"
)

type entityMatcher struct {
	kind    EntityType
	pattern *regexp.Regexp
}

var entityMatchers = []entityMatcher{
	{EntityMonetary, regexp.MustCompile(`\$\d{1,3}(?:,\d{3})+(?:\.\d+)?|\$\d+(?:\.\d+)?|\d+\s(?:dollars|USD|EUR|GBP)`)},
	{EntityPercentage, regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)},
	{EntityDate, regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}`)},
	{EntityEmail, regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{EntityURL, regexp.MustCompile(`https?://\S+`)},
}

// EntityTagger records pattern-matched entities found in the response.
type EntityTagger struct {
	clock
}

// NewEntityTagger returns an EntityTagger that timestamps steps with now.
func NewEntityTagger(now func() time.Time) *EntityTagger {
	return &EntityTagger{clock{now}}
}

func (t *EntityTagger) Name() string { return StepTagEntities }

func (t *EntityTagger) Apply(rec *record.Record) (*record.Record, error) {
	out := rec.Clone()
	found := FindEntities(out.Response)
	out.Metadata.Entities = found
	out.AddStep(StepTagEntities, t.stamp(), map[string]any{"entity_count": len(found)})
	return out, nil
}

// FindEntities returns every match per entity type, in text order. Types
// without matches are absent; the result is nil when nothing matched.
func FindEntities(text string) map[string][]string {
	var found map[string][]string
	for _, m := range entityMatchers {
		matches := m.pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		if found == nil {
			found = make(map[string][]string)
		}
		found[string(m.kind)] = matches
	}
	return found
}
