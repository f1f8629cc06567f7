package escapes

import "testing"

func TestTransform(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"join", `\join`, "⋈{}"},
		{"projection short", `\proj`, "π{}"},
		{"projection long", `\projection`, "π{}"},
		{"selection", `\sel`, "σ{}"},
		{"difference", `\diff`, "−{}"},
		{"rename", `\rename`, "ρ{}"},
		{"inside expression", `R \join S`, "R ⋈{} S"},
		{"followed by brace", `\sel{A = 1}(R)`, "σ{}{A = 1}(R)"},
		{"unknown escape", `\foo`, `\foo`},
		{"lone backslash", `R \`, `R \`},
		{"plain text", "SELECT", "SELECT"},
		{"two escapes", `\proj\sel`, "π{}σ{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transform(tt.in, Options{}); got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformIdempotent(t *testing.T) {
	once := Transform(`\proj{a}(R \join S)`, Options{})
	if twice := Transform(once, Options{}); twice != once {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
}

func TestTransformOptions(t *testing.T) {
	if got := Transform(`\join`, Options{Disabled: true}); got != `\join` {
		t.Errorf("disabled transform = %q", got)
	}
	if got := Transform(`\join`, Options{Placeholder: "()"}); got != "⋈()" {
		t.Errorf("custom placeholder = %q", got)
	}
}
