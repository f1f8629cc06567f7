package fieldstore

import (
	"bytes"
	"encoding/json"
)

// Result is the backend's verdict for one field.
type Result struct {
	Correct     bool
	Expected    string
	HasExpected bool
}

type resultJSON struct {
	Correct  json.RawMessage `json:"correct"`
	Expected json.RawMessage `json:"expected"`
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{Correct: truthy(raw.Correct)}
	if len(raw.Expected) > 0 && string(raw.Expected) != "null" {
		r.Expected = displayJSON(raw.Expected)
		r.HasExpected = true
	}
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{"correct": r.Correct}
	if r.HasExpected {
		out["expected"] = r.Expected
	}
	return json.Marshal(out)
}

// truthy accepts true, 1 and "true"; some generators emit `1 == 1`-style ints.
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1", `"true"`:
		return true
	}
	return false
}

// displayJSON renders an arbitrary JSON value as display text: strings
// unquoted, everything else compact.
func displayJSON(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Overlay maps field-ids to evaluation results. It is never mutated by
// the widgets that read it.
type Overlay map[string]Result

// Lookup returns the result for id.
func (o Overlay) Lookup(id string) (Result, bool) {
	if o == nil {
		return Result{}, false
	}
	r, ok := o[id]
	return r, ok
}

// Filter returns the entries whose ids are in ids.
func (o Overlay) Filter(ids map[string]struct{}) Overlay {
	out := make(Overlay)
	if len(o) == 0 || len(ids) == 0 {
		return out
	}
	for id := range ids {
		if r, ok := o[id]; ok {
			out[id] = r
		}
	}
	return out
}

// Score counts correct entries.
func (o Overlay) Score() (correct, total int) {
	for _, r := range o {
		total++
		if r.Correct {
			correct++
		}
	}
	return correct, total
}
