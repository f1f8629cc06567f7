package backend

import (
	"net/url"
	"sort"
	"strings"
)

// Settings are the query parameters sent with every request of one
// question: difficulty, seed and any generator-specific options.
type Settings struct {
	values url.Values
}

// ParseSettings parses a query string ("seed=4&difficulty=hard", with or
// without a leading "?"). A malformed query yields empty settings.
func ParseSettings(query string) Settings {
	v, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		v = url.Values{}
	}
	return Settings{values: v}.sanitize()
}

// FromMap builds settings from key/value pairs.
func FromMap(m map[string]string) Settings {
	v := url.Values{}
	for k, val := range m {
		if val != "" {
			v.Set(k, val)
		}
	}
	return Settings{values: v}.sanitize()
}

// sanitize drops a seed that is not a non-negative integer.
func (s Settings) sanitize() Settings {
	if seed := s.values.Get("seed"); seed != "" && !isDigits(seed) {
		s.values.Del("seed")
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// With returns a copy with key set to value. An empty value removes key.
func (s Settings) With(key, value string) Settings {
	v := url.Values{}
	for k, vals := range s.values {
		v[k] = append([]string(nil), vals...)
	}
	if value == "" {
		v.Del(key)
	} else {
		v.Set(key, value)
	}
	return Settings{values: v}.sanitize()
}

// Get returns the value of key.
func (s Settings) Get(key string) string {
	return s.values.Get(key)
}

// Seed returns the seed, "" when unset.
func (s Settings) Seed() string { return s.Get("seed") }

// Difficulty returns the difficulty, "" when unset.
func (s Settings) Difficulty() string { return s.Get("difficulty") }

// Keys lists the set keys in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode renders the settings as a query string without the "?".
func (s Settings) Encode() string {
	if s.values == nil {
		return ""
	}
	return s.values.Encode()
}
