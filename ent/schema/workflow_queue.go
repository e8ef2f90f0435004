package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// WorkflowQueue is the projection backing the job queue & worker claim
// protocol (spec.md §4.3). One row per bootstrap workflow invocation.
//
// Seeded by the workflow_queue stream_type's projection handler reacting to
// organization.bootstrap.initiated; never written to directly by RPCs.
type WorkflowQueue struct {
	ent.Schema
}

func (WorkflowQueue) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (WorkflowQueue) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("organization_slug").
			NotEmpty().
			Immutable(),
		field.Bytes("request_payload").
			Immutable(),
		field.Enum("status").
			Values("pending", "processing", "completed", "failed").
			Default("pending"),
		field.String("worker_id").
			Optional().
			Nillable(),
		field.String("workflow_id").
			Optional().
			Nillable(),
		field.String("workflow_run_id").
			Optional().
			Nillable(),
		field.Time("claimed_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.Bytes("result_payload").
			Optional().
			Nillable(),
		field.Time("failed_at").
			Optional().
			Nillable(),
		field.String("error_message").
			Optional().
			Nillable(),
		field.String("error_stack").
			Optional().
			Nillable(),
		field.Int("retry_count").
			Default(0),
	}
}

// Indexes of the WorkflowQueue.
func (WorkflowQueue) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("organization_slug").Unique(),
		index.Fields("workflow_id"),
	}
}
