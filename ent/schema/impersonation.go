package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ImpersonationSession is the projection for impersonation.started/.renewed/
// .ended — a platform-privileged principal operating temporarily as another
// user, typically for support.
type ImpersonationSession struct {
	ent.Schema
}

func (ImpersonationSession) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (ImpersonationSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("actor_user_id").NotEmpty().Immutable(),
		field.String("target_user_id").NotEmpty().Immutable(),
		field.Time("expires_at"),
		field.Time("ended_at").Optional().Nillable(),
	}
}

func (ImpersonationSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("actor_user_id"),
		index.Fields("target_user_id"),
	}
}
