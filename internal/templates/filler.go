package templates

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrNoTemplates is returned when a domain has no templates to fill.
var ErrNoTemplates = errors.New("no templates found for domain")

// Prompt is a filled template together with the choices that produced it.
type Prompt struct {
	Text       string
	Domain     string
	TemplateID int
	Parameters map[string]string
	CreatedAt  time.Time
}

// Filler substitutes random candidate values into templates. All
// randomness comes from the injected source.
type Filler struct {
	rng *rand.Rand
	now func() time.Time
}

// FillerOption configures a Filler.
type FillerOption func(*Filler)

// WithClock overrides the clock used for Prompt.CreatedAt.
func WithClock(now func() time.Time) FillerOption {
	return func(f *Filler) { f.now = now }
}

// NewFiller returns a Filler drawing from rng.
func NewFiller(rng *rand.Rand, opts ...FillerOption) *Filler {
	f := &Filler{rng: rng, now: time.Now}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NewSeededFiller returns a Filler with a PCG source seeded from seed.
func NewSeededFiller(seed uint64, opts ...FillerOption) *Filler {
	return NewFiller(rand.New(rand.NewPCG(seed, seed)), opts...)
}

// Fill draws one candidate per slot, in slot order, and replaces every
// occurrence of that slot's marker.
func (f *Filler) Fill(t Template, templateID int) Prompt {
	text := t.Text
	params := make(map[string]string, len(t.Parameters))
	for _, s := range t.Parameters {
		if len(s.Values) == 0 {
			continue
		}
		v := s.Values[f.rng.IntN(len(s.Values))]
		text = strings.ReplaceAll(text, s.Marker(), v)
		params[s.Name] = v
	}

	return Prompt{
		Text:       text,
		Domain:     t.Domain,
		TemplateID: templateID,
		Parameters: params,
		CreatedAt:  f.now(),
	}
}

// Pick chooses one template uniformly and returns it with its index.
// ts must not be empty.
func (f *Filler) Pick(ts []Template) (Template, int) {
	i := f.rng.IntN(len(ts))
	return ts[i], i
}

// FillDomain picks a random template for domain from s and fills it.
func (f *Filler) FillDomain(s *Store, domain string) (Prompt, error) {
	ts := s.ForDomain(domain)
	if len(ts) == 0 {
		return Prompt{}, fmt.Errorf("%w %q", ErrNoTemplates, domain)
	}
	t, id := f.Pick(ts)
	return f.Fill(t, id), nil
}
