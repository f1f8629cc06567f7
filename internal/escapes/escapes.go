// Package escapes rewrites backslash operator escapes typed into
// expression fields (\join, \proj, ...) into relational algebra glyphs.
package escapes

import "strings"

// DefaultPlaceholder follows every substituted glyph so the learner can
// type the operator's subscript between the braces.
const DefaultPlaceholder = "{}"

// Options tunes Transform. The zero value is the default behaviour.
type Options struct {
	// Disabled turns Transform into the identity.
	Disabled bool
	// Placeholder replaces DefaultPlaceholder when non-empty.
	Placeholder string
}

var glyphs = map[string]string{
	"join":       "⋈",
	"proj":       "π",
	"projection": "π",
	"sel":        "σ",
	"selection":  "σ",
	"diff":       "−",
	"difference": "−",
	"rename":     "ρ",
}

// Glyph returns the operator glyph for an escape name (without the
// leading backslash).
func Glyph(name string) (string, bool) {
	g, ok := glyphs[name]
	return g, ok
}

// Transform replaces every known escape word in s. Unknown escapes, a
// trailing lone backslash and all other text pass through unchanged.
// Transform is idempotent: its output contains no known escapes.
func Transform(s string, opts Options) string {
	if opts.Disabled || !strings.Contains(s, `\`) {
		return s
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		if g, ok := glyphs[s[i+1:j]]; ok {
			b.WriteString(g)
			b.WriteString(placeholder)
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
