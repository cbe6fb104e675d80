package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveISO is an ISO 8601 timestamp without a UTC offset, with optional
// fractional seconds.
const naiveISO = "2006-01-02T15:04:05.999999999"

// ParseTimestamp reads an RFC 3339 timestamp or, failing that, an ISO 8601
// one without an offset, which is taken as local time. Timestamps are
// always written as RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveISO, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is neither RFC 3339 nor ISO 8601", s)
	}
	return t, nil
}

func decodeTimestamp(raw json.RawMessage, field string) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// recordFields breaks the UnmarshalJSON recursion.
type recordFields Record

func (r *Record) UnmarshalJSON(data []byte) error {
	aux := struct {
		*recordFields
		CreatedAt json.RawMessage `json:"created_at"`
	}{recordFields: (*recordFields)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := decodeTimestamp(aux.CreatedAt, "created_at")
	if err != nil {
		return err
	}
	r.CreatedAt = t
	return nil
}

type stepFields Step

func (s *Step) UnmarshalJSON(data []byte) error {
	aux := struct {
		*stepFields
		Timestamp json.RawMessage `json:"timestamp"`
	}{stepFields: (*stepFields)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := decodeTimestamp(aux.Timestamp, "timestamp")
	if err != nil {
		return err
	}
	s.Timestamp = t
	return nil
}
