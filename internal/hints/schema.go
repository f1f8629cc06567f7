package hints

import "github.com/abhisek/quizdeck/internal/llm"

// HintSchema constrains the hint response.
var HintSchema = &llm.Schema{
	Name:        "field-hint",
	Description: "An explanation of why an answer is wrong and what to try next",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the given answer is wrong, in 2-4 sentences, without revealing the expected value",
			},
			"next_step": map[string]any{
				"type":        "string",
				"description": "One concrete step the learner should take next",
			},
		},
		"required":             []any{"explanation", "next_step"},
		"additionalProperties": false,
	},
}
