package templates

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemplates(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefault_CoversFinanceAndHealthcare(t *testing.T) {
	s := Default()
	if got := len(s.ForDomain("finance")); got != 1 {
		t.Errorf("expected 1 finance template, got %d", got)
	}
	if got := len(s.ForDomain("healthcare")); got != 3 {
		t.Errorf("expected 3 healthcare templates, got %d", got)
	}
	if got := s.Domains(); len(got) != 2 || got[0] != "finance" || got[1] != "healthcare" {
		t.Errorf("unexpected domains: %v", got)
	}
}

func TestParams_PreservesJSONOrder(t *testing.T) {
	var tmpl Template
	raw := `{"domain":"d","template":"{z} {a} {m}","parameters":{"z":["1"],"a":["2"],"m":["3"]}}`
	if err := json.Unmarshal([]byte(raw), &tmpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, s := range tmpl.Parameters {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "z,a,m" {
		t.Fatalf("expected order z,a,m, got %v", names)
	}

	out, err := json.Marshal(tmpl.Parameters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"z":["1"],"a":["2"],"m":["3"]}` {
		t.Fatalf("unexpected marshal output: %s", out)
	}
}

func TestLoad_YAMLPreservesOrder(t *testing.T) {
	path := writeTemplates(t, "templates.yaml", `
- domain: legal
  template: "Explain {topic} for {audience}."
  parameters:
    topic: [contracts, tenancy]
    audience: [students]
`)
	s := Load(path, nil)
	ts := s.ForDomain("legal")
	if len(ts) != 1 {
		t.Fatalf("expected 1 template, got %d", len(ts))
	}
	if ts[0].Parameters[0].Name != "topic" || ts[0].Parameters[1].Name != "audience" {
		t.Fatalf("unexpected slot order: %+v", ts[0].Parameters)
	}
	if vals, ok := ts[0].Parameters.Get("topic"); !ok || len(vals) != 2 {
		t.Fatalf("unexpected topic values: %v", vals)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	if s.Len() != Default().Len() {
		t.Fatalf("expected defaults, got %d templates", s.Len())
	}
	if Load("", nil).Len() != Default().Len() {
		t.Fatal("expected defaults for empty path")
	}
}

func TestLoad_MalformedFileIsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"bad.json":        `[{"domain": "finance",`,
		"empty-slot.json": `[{"domain":"finance","template":"{a}","parameters":{"a":[]}}]`,
		"bad.yaml":        "- domain: [",
	} {
		s := Load(writeTemplates(t, name, content), nil)
		if s.Len() != 0 {
			t.Errorf("%s: expected empty store, got %d templates", name, s.Len())
		}
	}
}

func TestFill_SubstitutesEveryMarker(t *testing.T) {
	tmpl := Template{
		Domain: "finance",
		Text:   "{who} should {act}; yes, {who} should.",
		Parameters: Params{
			{Name: "who", Values: []string{"retiree"}},
			{Name: "act", Values: []string{"save"}},
		},
	}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewSeededFiller(1, WithClock(func() time.Time { return now }))

	p := f.Fill(tmpl, 4)
	if p.Text != "retiree should save; yes, retiree should." {
		t.Fatalf("unexpected text: %q", p.Text)
	}
	if p.TemplateID != 4 || p.Domain != "finance" || !p.CreatedAt.Equal(now) {
		t.Fatalf("unexpected prompt: %+v", p)
	}
	if p.Parameters["who"] != "retiree" || p.Parameters["act"] != "save" {
		t.Fatalf("unexpected parameters: %v", p.Parameters)
	}
}

func TestFill_DeterministicWithSeed(t *testing.T) {
	s := Default()
	a := NewSeededFiller(42)
	b := NewSeededFiller(42)

	for i := 0; i < 20; i++ {
		pa, err := a.FillDomain(s, "healthcare")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pb, _ := b.FillDomain(s, "healthcare")
		if pa.Text != pb.Text || pa.TemplateID != pb.TemplateID {
			t.Fatalf("iteration %d diverged: %q vs %q", i, pa.Text, pb.Text)
		}
		if strings.Contains(pa.Text, "{") {
			t.Fatalf("unfilled marker in %q", pa.Text)
		}
		if pa.TemplateID < 0 || pa.TemplateID >= 3 {
			t.Fatalf("template id %d out of domain range", pa.TemplateID)
		}
	}
}

func TestFillDomain_UnknownDomain(t *testing.T) {
	_, err := NewSeededFiller(1).FillDomain(Default(), "astrology")
	if !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}
}
