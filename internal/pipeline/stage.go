// Package pipeline cleans, validates, scores and tags generated records,
// and derives augmented variants from them.
package pipeline

import (
	"time"

	"github.com/abhisek/datagen/internal/record"
)

// Step names recorded in each record's trace.
const (
	StepClean        = "clean_text"
	StepValidate     = "validate_content"
	StepScore        = "add_quality_score"
	StepTagEntities  = "tag_entities"
	StepAugmentation = "augmentation"
)

// Stage transforms one record. Implementations must not modify their
// argument; they return a fresh record with exactly one step appended to
// its trace.
type Stage interface {
	// Name returns the trace step name this stage appends.
	Name() string

	// Apply returns the transformed copy of rec.
	Apply(rec *record.Record) (*record.Record, error)
}

// clock is embedded by stages that timestamp their trace step.
type clock struct {
	now func() time.Time
}

func (c clock) stamp() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// lastStep returns the step a stage just appended.
func lastStep(rec *record.Record) record.Step {
	return rec.Trace.Steps[len(rec.Trace.Steps)-1]
}
