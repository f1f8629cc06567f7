package layout

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LastView is the read-only view shown once every step is finished.
const LastView = "lastView"

// NextView returns the name of the i-th step view (1-based).
func NextView(i int) string {
	return "view" + strconv.Itoa(i)
}

// Layout is a decoded question layout: an optional header plus the named
// views.
type Layout struct {
	Header *Text
	Views  map[string][]Element
}

// View returns the elements of the named view. A missing view is empty.
func (l *Layout) View(name string) []Element {
	if l == nil {
		return nil
	}
	return l.Views[name]
}

// Has reports whether the layout declares the named view.
func (l *Layout) Has(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.Views[name]
	return ok
}

// StepCount returns the number of consecutive step views starting at view1.
func (l *Layout) StepCount() int {
	n := 0
	for l.Has(NextView(n + 1)) {
		n++
	}
	return n
}

// ViewNames returns the declared views, steps first in numeric order and
// lastView at the end.
func (l *Layout) ViewNames() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Views))
	for name := range l.Views {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return viewOrder(names[i]) < viewOrder(names[j]) ||
			(viewOrder(names[i]) == viewOrder(names[j]) && names[i] < names[j])
	})
	return names
}

func viewOrder(name string) int {
	if name == LastView {
		return 1 << 30
	}
	if rest, ok := strings.CutPrefix(name, "view"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return n
		}
	}
	return 1<<30 - 1
}

// UnmarshalJSON decodes the views of a layout object. A view that is not
// an array decodes as a single Unknown placeholder.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}
	l.Header = nil
	l.Views = make(map[string][]Element, len(raw))
	for key, value := range raw {
		if key == "header" {
			l.Header = decodeHeader(value)
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			l.Views[key] = []Element{Unknown{Type: "view", Err: fmt.Errorf("view %s: %w", key, err)}}
			continue
		}
		l.Views[key] = DecodeElements(items)
	}
	return nil
}

// decodeHeader accepts a bare string or a text element.
func decodeHeader(data json.RawMessage) *Text {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return nil
		}
		return &Text{Value: s}
	}
	if t, ok := DecodeElement(data).(Text); ok && t.Value != "" {
		return &t
	}
	return nil
}

// Question is the envelope returned by the question endpoint.
type Question struct {
	Type       string
	Seed       string
	Difficulty string
	Metadata   map[string]any
	Layout     *Layout
}

type rawQuestion struct {
	Type       flexString      `json:"type"`
	Seed       flexString      `json:"seed"`
	Difficulty flexString      `json:"difficulty"`
	Metadata   map[string]any  `json:"metadata"`
	Layout     json.RawMessage `json:"layout"`
}

// DecodeQuestion validates and decodes a question envelope.
func DecodeQuestion(data []byte) (*Question, error) {
	if err := ValidateEnvelope(data); err != nil {
		return nil, err
	}
	var raw rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	l, err := Decode(raw.Layout)
	if err != nil {
		return nil, err
	}
	return &Question{
		Type:       string(raw.Type),
		Seed:       string(raw.Seed),
		Difficulty: string(raw.Difficulty),
		Metadata:   raw.Metadata,
		Layout:     l,
	}, nil
}

// Decode validates and decodes a bare layout object.
func Decode(data []byte) (*Layout, error) {
	if err := ValidateLayout(data); err != nil {
		return nil, err
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
