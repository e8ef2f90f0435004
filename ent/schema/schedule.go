package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Schedule is the projection for schedule.created/.updated/.deactivated/
// .reactivated/.deleted. A schedule is an organization-scoped template that
// users are assigned to via ScheduleAssignment.
type Schedule struct {
	ent.Schema
}

func (Schedule) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (Schedule) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("organization_id").NotEmpty().Immutable(),
		field.String("name").NotEmpty(),
		field.Bool("is_active").Default(true),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (Schedule) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
	}
}

// ScheduleAssignment is the projection for schedule.user_assigned/
// .user_unassigned. Payload fields per SPEC_FULL.md §9's resolution of the
// open question: {schedule_id, user_id, assigned_by}.
type ScheduleAssignment struct {
	ent.Schema
}

func (ScheduleAssignment) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (ScheduleAssignment) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("schedule_id").NotEmpty().Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.String("assigned_by").NotEmpty().Immutable(),
		field.Time("unassigned_at").Optional().Nillable(),
	}
}

func (ScheduleAssignment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("schedule_id", "user_id").Unique(),
	}
}
