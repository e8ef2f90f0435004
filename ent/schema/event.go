package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event holds the schema for the append-only domain event log.
//
// Every write in the system funnels through this table via
// internal/eventstore.Store.Emit. Rows are never mutated after insert except
// for processed_at, processing_error, and retry_count, which the projection
// engine updates once per event.
type Event struct {
	ent.Schema
}

// Fields of the Event.
func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Int64("sequence_number").
			Immutable(),
		field.String("stream_id").
			NotEmpty().
			Immutable(),
		field.String("stream_type").
			NotEmpty().
			Immutable(),
		field.Int("stream_version").
			Immutable(),
		field.String("event_type").
			NotEmpty().
			Immutable(),
		field.Bytes("event_data").
			Immutable(),
		field.Bytes("event_metadata").
			Immutable(),
		field.Time("created_at").
			Immutable(),
		field.Time("processed_at").
			Optional().
			Nillable(),
		field.String("processing_error").
			Optional().
			Nillable(),
		field.Int("retry_count").
			Default(0),
	}
}

// Indexes of the Event.
func (Event) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("stream_id", "stream_type", "stream_version").Unique(),
		index.Fields("sequence_number").Unique(),
		index.Fields("event_type"),
		index.Fields("stream_type", "event_type"),
		index.Fields("processing_error"),
	}
}
