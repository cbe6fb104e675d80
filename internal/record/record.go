package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRecord is returned when a record is missing required fields.
var ErrInvalidRecord = errors.New("invalid record")

// DefaultDomain is used when a record carries no domain label.
const DefaultDomain = "general"

// Record is one generated training example: prompt, model response, the
// metadata accumulated by the pipeline, and its processing trace.
type Record struct {
	// ID is assigned at creation and never changes.
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Domain selects the template set and validation rules.
	Domain string `json:"domain"`

	// Input is the filled prompt. Only the cleaning stage rewrites it.
	Input string `json:"input"`

	// Response is the model output. Rewritten by cleaning and augmentation.
	Response string `json:"response"`

	Metadata Metadata `json:"metadata"`
	Trace    Trace    `json:"trace"`
}

// New creates a record with a fresh identifier and creation time.
func New(domain, input, response string, now time.Time) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Domain:    domain,
		Input:     input,
		Response:  response,
	}
}

// EffectiveDomain returns the domain label, or DefaultDomain when unset.
func (r *Record) EffectiveDomain() string {
	if r.Domain == "" {
		return DefaultDomain
	}
	return r.Domain
}

// Check reports whether the record has the fields the pipeline relies on.
func (r *Record) Check() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a deep copy. Stages clone before writing so the caller's
// record is never observed half-updated.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Metadata = r.Metadata.clone()
	out.Trace = r.Trace.clone()
	return &out
}

// AddStep appends a processing step to the trace.
func (r *Record) AddStep(name string, at time.Time, params map[string]any) {
	r.Trace.append(name, at, params)
}

// StepNames returns the names of all processing steps in order.
func (r *Record) StepNames() []string {
	names := make([]string, len(r.Trace.Steps))
	for i, s := range r.Trace.Steps {
		names[i] = s.Name
	}
	return names
}
