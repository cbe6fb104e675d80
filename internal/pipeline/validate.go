package pipeline

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/record"
)

// ContentValidator checks a response against the global minimum length
// and the prohibited terms of the record's domain. A failed check is
// reported in metadata, never as an error.
type ContentValidator struct {
	clock
	minLength  int
	prohibited map[string][]string
}

// NewContentValidator builds a validator from the validation and domain
// sections of cfg.
func NewContentValidator(cfg config.Config, now func() time.Time) *ContentValidator {
	rules := make(map[string][]string, len(cfg.Domains))
	for domain, r := range cfg.Domains {
		rules[domain] = append([]string(nil), r.ProhibitedContent...)
	}
	return &ContentValidator{
		clock:      clock{now},
		minLength:  cfg.Validation.MinLength,
		prohibited: rules,
	}
}

func (v *ContentValidator) Name() string { return StepValidate }

func (v *ContentValidator) Apply(rec *record.Record) (*record.Record, error) {
	out := rec.Clone()
	issues := v.Issues(out.EffectiveDomain(), out.Response)
	out.Metadata.Validation = &record.Validation{
		IsValid: len(issues) == 0,
		Issues:  issues,
	}
	out.AddStep(StepValidate, v.stamp(), nil)
	return out, nil
}

// Issues lists every rule response violates for domain. The slice is
// never nil.
func (v *ContentValidator) Issues(domain, response string) []string {
	issues := []string{}

	if n := utf8.RuneCountInString(response); n < v.minLength {
		issues = append(issues, fmt.Sprintf("Response too short (%d chars, minimum %d)", n, v.minLength))
	}

	lower := strings.ToLower(response)
	for _, term := range v.prohibited[domain] {
		if strings.Contains(lower, strings.ToLower(term)) {
			issues = append(issues, fmt.Sprintf("Contains prohibited content: '%s'", term))
		}
	}
	return issues
}
