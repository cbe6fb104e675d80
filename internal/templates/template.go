package templates

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a parameterized prompt for one domain. Slots appear in Text
// as {name} markers.
type Template struct {
	Domain     string `json:"domain" yaml:"domain"`
	Text       string `json:"template" yaml:"template"`
	Parameters Params `json:"parameters" yaml:"parameters"`
}

// Slot is a named placeholder with its candidate values.
type Slot struct {
	Name   string
	Values []string
}

// Marker returns the literal text replaced in the template, e.g. "{action}".
func (s Slot) Marker() string {
	return "{" + s.Name + "}"
}

// Params is an ordered list of slots. Order follows the source document so
// that a seeded filler draws values in a reproducible sequence.
type Params []Slot

// Get returns the candidates for a slot.
func (p Params) Get(name string) ([]string, bool) {
	for _, s := range p {
		if s.Name == name {
			return s.Values, true
		}
	}
	return nil, false
}

func (p Params) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, s := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		vals, err := json.Marshal(s.Values)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(vals)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("parameters: expected object, got %v", tok)
	}

	var out Params
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parameters: expected slot name, got %v", keyTok)
		}
		var values []string
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("parameters: slot %q: %w", name, err)
		}
		out = append(out, Slot{Name: name, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameters: expected mapping at line %d", node.Line)
	}

	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var values []string
		if err := node.Content[i+1].Decode(&values); err != nil {
			return fmt.Errorf("parameters: slot %q: %w", node.Content[i].Value, err)
		}
		out = append(out, Slot{Name: node.Content[i].Value, Values: values})
	}

	*p = out
	return nil
}

// validate reports structural problems that would make filling impossible.
func (t Template) validate() error {
	if t.Domain == "" {
		return fmt.Errorf("template %q has no domain", t.Text)
	}
	if t.Text == "" {
		return fmt.Errorf("template for domain %q has no text", t.Domain)
	}
	for _, s := range t.Parameters {
		if len(s.Values) == 0 {
			return fmt.Errorf("template for domain %q: slot %q has no candidates", t.Domain, s.Name)
		}
	}
	return nil
}
