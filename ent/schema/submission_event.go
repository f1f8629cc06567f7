package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SubmissionEvent records the score of one evaluated view. Answers
// themselves are not kept.
type SubmissionEvent struct {
	ent.Schema
}

func (SubmissionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SubmissionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("attempt_id").
			Comment("Groups the submissions of one loaded question"),
		field.String("question_type"),
		field.String("difficulty").
			Default(""),
		field.String("seed").
			Default(""),
		field.String("view").
			Comment("View id the submission was made from"),
		field.Int("correct"),
		field.Int("total"),
	}
}

func (SubmissionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("attempt_id"),
		index.Fields("question_type"),
	}
}
