package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// OperatorAlert is a durable record of a condition spec.md §7 says an
// operator is expected to intervene on: a non-retryable bootstrap workflow
// failure whose compensation itself failed, or a compensation step that
// could not complete. It is written synchronously, in the same spirit as
// the teacher's notification inbox, but scoped to platform operators
// rather than end users — there is no per-tenant recipient here.
type OperatorAlert struct {
	ent.Schema
}

func (OperatorAlert) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (OperatorAlert) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("workflow_id").NotEmpty().Immutable(),
		field.String("organization_id").Optional().Immutable(),
		field.Enum("severity").Values("warning", "critical").Default("critical").Immutable(),
		field.String("message").NotEmpty().Immutable(),
		field.Bool("acknowledged").Default(false),
		field.Time("acknowledged_at").Optional().Nillable(),
	}
}

func (OperatorAlert) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("workflow_id"),
		index.Fields("acknowledged"),
	}
}
