package record

import (
	"encoding/json"
	"maps"
	"slices"
)

// Validation is the verdict written by the validation stage.
type Validation struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

// Metadata holds the typed keys the pipeline reads and writes. Keys it does
// not know about are preserved in Extra and serialized alongside.
type Metadata struct {
	GenerationMethod   string              `json:"generation_method,omitempty"`
	GeneratorVersion   string              `json:"generator_version,omitempty"`
	ModelUsed          string              `json:"model_used,omitempty"`
	TemplateID         *int                `json:"template_id,omitempty"`
	Parameters         map[string]string   `json:"parameters,omitempty"`
	Validation         *Validation         `json:"validation,omitempty"`
	QualityScore       *float64            `json:"quality_score,omitempty"`
	Entities           map[string][]string `json:"entities,omitempty"`
	Augmented          bool                `json:"augmented,omitempty"`
	AugmentationMethod string              `json:"augmentation_method,omitempty"`

	Extra map[string]any `json:"-"`
}

// knownKeys are the JSON keys owned by the typed fields above.
var knownKeys = []string{
	"generation_method", "generator_version", "model_used", "template_id",
	"parameters", "validation", "quality_score", "entities", "augmented",
	"augmentation_method",
}

// metadataFields breaks the MarshalJSON/UnmarshalJSON recursion.
type metadataFields Metadata

func (m Metadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(metadataFields(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]any, len(m.Extra)+len(knownKeys))
	for k, v := range m.Extra {
		if !slices.Contains(knownKeys, k) {
			merged[k] = v
		}
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var fields metadataFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		fields.Extra = all
	}

	*m = Metadata(fields)
	return nil
}

// Score returns the quality score, or false if none has been assigned.
func (m Metadata) Score() (float64, bool) {
	if m.QualityScore == nil {
		return 0, false
	}
	return *m.QualityScore, true
}

// IsValid reports the validation verdict. Records that have not been
// validated count as valid.
func (m Metadata) IsValid() bool {
	return m.Validation == nil || m.Validation.IsValid
}

func (m Metadata) clone() Metadata {
	out := m
	if m.TemplateID != nil {
		id := *m.TemplateID
		out.TemplateID = &id
	}
	out.Parameters = maps.Clone(m.Parameters)
	if m.Validation != nil {
		v := Validation{IsValid: m.Validation.IsValid, Issues: slices.Clone(m.Validation.Issues)}
		out.Validation = &v
	}
	if m.QualityScore != nil {
		s := *m.QualityScore
		out.QualityScore = &s
	}
	if m.Entities != nil {
		out.Entities = make(map[string][]string, len(m.Entities))
		for k, v := range m.Entities {
			out.Entities[k] = slices.Clone(v)
		}
	}
	if m.Extra != nil {
		out.Extra = deepCopyMap(m.Extra)
	}
	return out
}

// deepCopyMap copies nested maps and slices as produced by encoding/json.
func deepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
