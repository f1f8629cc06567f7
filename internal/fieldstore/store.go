// Package fieldstore holds user answers as a flat field-id keyed map and
// the server-supplied evaluation overlay that annotates them.
package fieldstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value is a single answer: either a string or a boolean.
type Value struct {
	str    string
	b      bool
	isBool bool
}

// StringValue wraps s as a Value.
func StringValue(s string) Value { return Value{str: s} }

// BoolValue wraps b as a Value.
func BoolValue(b bool) Value { return Value{b: b, isBool: true} }

// IsBool reports whether the value holds a boolean.
func (v Value) IsBool() bool { return v.isBool }

// String returns the string form. Booleans render as "true"/"false".
func (v Value) String() string {
	if v.isBool {
		if v.b {
			return "true"
		}
		return "false"
	}
	return v.str
}

// Bool returns the boolean form. Strings are true only when equal to "true".
func (v Value) Bool() bool {
	if v.isBool {
		return v.b
	}
	return v.str == "true"
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isBool {
		return json.Marshal(v.b)
	}
	return json.Marshal(v.str)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = StringValue("")
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = StringValue(n.String())
		return nil
	}
	return fmt.Errorf("field value must be a string or boolean, got %s", data)
}

// Store is the single mutable answer map shared by every widget of a
// question. Widgets write only keys in their own namespace.
type Store struct {
	values map[string]Value
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string]Value)}
}

// Get returns the value stored under id.
func (s *Store) Get(id string) (Value, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Has reports whether id has an entry.
func (s *Store) Has(id string) bool {
	_, ok := s.values[id]
	return ok
}

// String returns the string form of id's value, or "" when absent.
func (s *Store) String(id string) string {
	return s.values[id].String()
}

// StringOr returns id's value, or def when absent.
func (s *Store) StringOr(id, def string) string {
	if v, ok := s.values[id]; ok {
		return v.String()
	}
	return def
}

// Bool returns the boolean form of id's value, false when absent.
func (s *Store) Bool(id string) bool {
	return s.values[id].Bool()
}

// SetString stores a string under id.
func (s *Store) SetString(id, value string) {
	s.values[id] = StringValue(value)
}

// SetBool stores a boolean under id.
func (s *Store) SetBool(id string, value bool) {
	s.values[id] = BoolValue(value)
}

// Delete removes id.
func (s *Store) Delete(id string) {
	delete(s.values, id)
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.values) }

// KeysWithPrefix returns the sorted keys starting with prefix.
func (s *Store) KeysWithPrefix(prefix string) []string {
	var keys []string
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.values = make(map[string]Value)
}

// Snapshot returns a plain copy suitable for JSON encoding.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if v.isBool {
			out[k] = v.b
		} else {
			out[k] = v.str
		}
	}
	return out
}

func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}

func (s *Store) UnmarshalJSON(data []byte) error {
	values := make(map[string]Value)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	s.values = values
	return nil
}
