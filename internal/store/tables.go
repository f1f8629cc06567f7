package store

import (
	"reflect"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/quizdeck/ent/schema"
)

const (
	requestEventsTable    = "request_events"
	submissionEventsTable = "submission_events"
	llmRequestEventsTable = "llm_request_events"
)

// tableFor builds the migration table for an ent schema. Every table gets
// an auto-increment id primary key, then the mixin fields followed by the
// schema's own fields in declaration order.
func tableFor(name string, s ent.Interface) *schema.Table {
	t := schema.NewTable(name).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	for _, f := range fields {
		t.AddColumn(columnFor(f.Descriptor()))
	}
	for _, idx := range indexes {
		d := idx.Descriptor()
		key := d.StorageKey
		if key == "" {
			key = name
			for _, f := range d.Fields {
				key += "_" + f
			}
		}
		t.AddIndex(key, d.Unique, d.Fields)
	}
	return t
}

func columnFor(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Unique:   d.Unique,
		Nullable: d.Optional,
		Comment:  d.Comment,
	}
	// Func defaults (time.Now) are applied by the writer.
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		c.Default = d.Default
	}
	return c
}

var (
	// RequestEventsTable holds one row per backend call.
	RequestEventsTable = tableFor(requestEventsTable, entschema.RequestEvent{})

	// SubmissionEventsTable holds one row per evaluated view.
	SubmissionEventsTable = tableFor(submissionEventsTable, entschema.SubmissionEvent{})

	// LLMRequestEventsTable holds one row per LLM call.
	LLMRequestEventsTable = tableFor(llmRequestEventsTable, entschema.LLMRequestEvent{})

	// Tables lists every table the migration creates.
	Tables = []*schema.Table{
		RequestEventsTable,
		SubmissionEventsTable,
		LLMRequestEventsTable,
	}
)
