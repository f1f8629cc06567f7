package hints

import (
	"fmt"
	"strings"
)

const hintSystemPrompt = `You are a teaching assistant for a data science course. A learner answered one field of an interactive exercise incorrectly. Explain the mistake and suggest the next step. Never state the expected answer outright.`

// maxContextChars caps the question text sent with a request.
const maxContextChars = 2000

func buildHintUserMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question type: %s\n", in.QuestionType)
	if in.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	}
	if in.Context != "" {
		ctx := in.Context
		if len(ctx) > maxContextChars {
			ctx = ctx[:maxContextChars] + "..."
		}
		fmt.Fprintf(&b, "\nQuestion:\n%s\n\n", ctx)
	}
	label := in.Label
	if label == "" {
		label = in.FieldID
	}
	fmt.Fprintf(&b, "Field: %s\n", label)
	fmt.Fprintf(&b, "Learner's answer: %q\n", in.Answer)
	if in.Expected != "" {
		fmt.Fprintf(&b, "Expected answer (do not reveal): %q\n", in.Expected)
	}
	return b.String()
}
