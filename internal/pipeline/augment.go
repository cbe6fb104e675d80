package pipeline

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/record"
)

// ErrInvalidFactor is returned when the augmentation factor is below 1.
var ErrInvalidFactor = errors.New("augmentation factor must be at least 1")

// AugmentationMethod is stored in the metadata of every variant.
const AugmentationMethod = "synonym_replacement"

// Synonym is a whole-word replacement applied to variant responses.
type Synonym struct {
	From string
	To   string

	pattern *regexp.Regexp
}

// wordEdge is one character that cannot be part of a word in any script.
const wordEdge = `[^\p{L}\p{N}_]`

// NewSynonym compiles a case-sensitive whole-word replacement.
func NewSynonym(from, to string) Synonym {
	return Synonym{
		From:    from,
		To:      to,
		pattern: regexp.MustCompile(`(?:^|` + wordEdge + `)(` + regexp.QuoteMeta(from) + `)(?:` + wordEdge + `|$)`),
	}
}

// DefaultSynonyms is applied in order when no list is configured.
var DefaultSynonyms = []Synonym{
	NewSynonym("important", "crucial"),
	NewSynonym("good", "beneficial"),
	NewSynonym("bad", "detrimental"),
	NewSynonym("big", "large"),
	NewSynonym("small", "minor"),
}

// ReplaceSynonyms rewrites the first whole-word occurrence of each
// synonym, in list order. Later synonyms see the output of earlier ones.
func ReplaceSynonyms(text string, synonyms []Synonym) string {
	for _, s := range synonyms {
		loc := s.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		text = text[:loc[2]] + s.To + text[loc[3]:]
	}
	return text
}

// Augmenter derives variants of processed records and runs each variant
// back through the pipeline.
type Augmenter struct {
	pipeline *Pipeline
	synonyms []Synonym
	newID    func() string
}

// AugmentOption configures an Augmenter.
type AugmentOption func(*Augmenter)

// WithSynonyms replaces DefaultSynonyms.
func WithSynonyms(s []Synonym) AugmentOption {
	return func(a *Augmenter) { a.synonyms = s }
}

// WithIDGenerator sets the identifier source for variants.
func WithIDGenerator(f func() string) AugmentOption {
	return func(a *Augmenter) { a.newID = f }
}

// NewAugmenter returns an Augmenter that re-processes variants with p and
// shares its clock, sink, logger and metrics.
func NewAugmenter(p *Pipeline, opts ...AugmentOption) *Augmenter {
	a := &Augmenter{
		pipeline: p,
		synonyms: DefaultSynonyms,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Augment returns copies of recs followed by factor-1 variants of each
// original, grouped by original in input order. A factor of 1 returns
// recs as given.
func (a *Augmenter) Augment(recs []*record.Record, factor int) ([]*record.Record, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFactor, factor)
	}
	if factor == 1 {
		return recs, nil
	}

	log := a.pipeline.logger
	log.Info("augmenting dataset", zap.Int("factor", factor), zap.Int("items", len(recs)))

	out := make([]*record.Record, 0, len(recs)*factor)
	for _, rec := range recs {
		out = append(out, rec.Clone())
	}

	for i, orig := range recs {
		if i > 0 && i%progressEvery == 0 {
			log.Info("augmentation progress", zap.Int("done", i), zap.Int("total", len(recs)))
		}
		if err := orig.Check(); err != nil {
			return nil, fmt.Errorf("augment item %d: %w", i, err)
		}

		for n := 1; n < factor; n++ {
			v, err := a.variant(orig, n)
			if err != nil {
				return nil, fmt.Errorf("augment %s variation %d: %w", orig.ID, n, err)
			}
			out = append(out, v)
		}
	}

	a.pipeline.metrics.RecordAugmented(len(out) - len(recs))
	log.Info("augmentation complete", zap.Int("before", len(recs)), zap.Int("after", len(out)))
	return out, nil
}

func (a *Augmenter) variant(orig *record.Record, n int) (*record.Record, error) {
	now := a.pipeline.now()
	params := map[string]any{
		"original_id":      orig.ID,
		"variation_number": n,
	}

	v := orig.Clone()
	v.ID = a.newID()
	v.CreatedAt = now
	v.Trace.SetParent(orig.ID)
	v.AddStep(StepAugmentation, now, params)
	v.Response = ReplaceSynonyms(v.Response, a.synonyms)
	v.Metadata.Augmented = true
	v.Metadata.AugmentationMethod = AugmentationMethod

	a.pipeline.sink.Record(StepAugmentation, v.ID, params)
	return a.pipeline.ProcessItem(v)
}
