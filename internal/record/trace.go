package record

import "time"

// Trace is the append-only processing history of a record.
type Trace struct {
	// ParentID links an augmented variant to the record it was derived from.
	ParentID *string `json:"parent_id"`
	Steps    []Step  `json:"processing_steps"`
}

// Step is one completed processing action.
type Step struct {
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Params    map[string]any `json:"params"`
}

func (t *Trace) append(name string, at time.Time, params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	t.Steps = append(t.Steps, Step{Name: name, Timestamp: at, Params: params})
}

// SetParent records the identifier of the record this one was derived from.
func (t *Trace) SetParent(id string) {
	t.ParentID = &id
}

// Parent returns the parent identifier, or "" for original records.
func (t Trace) Parent() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

func (t Trace) clone() Trace {
	out := Trace{}
	if t.ParentID != nil {
		id := *t.ParentID
		out.ParentID = &id
	}
	if t.Steps != nil {
		out.Steps = make([]Step, len(t.Steps))
		for i, s := range t.Steps {
			s.Params = deepCopyMap(s.Params)
			out.Steps[i] = s
		}
	}
	return out
}
