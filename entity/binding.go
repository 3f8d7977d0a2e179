package entity

import (
	"time"

	"github.com/chanuka/bound/pipeline"
	"github.com/chanuka/bound/storage"
	"github.com/chanuka/bound/transform"
)

// Pipeline bindings. Each entity exposes exactly one schema name, one
// transformer pair, and the constructors the boundary runs after
// authoritative validation.

// UserBinding wires User into the pipeline.
func UserBinding(store storage.RecordStore[UserRecord], policy transform.Policy) pipeline.Binding[UserRecord, User] {
	return pipeline.Binding[UserRecord, User]{
		Entity:      "User",
		Schema:      SchemaUser,
		Transformer: UserTransformer{Policy: policy},
		Store:       store,
		New: func(in map[string]any, id string, now time.Time) (User, error) {
			return NewUserFromInput(in, Mint{ID: id, Now: now})
		},
		Apply: func(cur User, in map[string]any, now time.Time) (User, error) {
			return ApplyUserInput(cur, in, now), nil
		},
		SetVersion: func(u User, v int64) User { u.Version = v; return u },
	}
}

// BillBinding wires Bill into the pipeline.
func BillBinding(store storage.RecordStore[BillRecord], policy transform.Policy) pipeline.Binding[BillRecord, Bill] {
	return pipeline.Binding[BillRecord, Bill]{
		Entity:      "Bill",
		Schema:      SchemaBill,
		Transformer: BillTransformer{Policy: policy},
		Store:       store,
		New: func(in map[string]any, id string, now time.Time) (Bill, error) {
			return NewBillFromInput(in, Mint{ID: id, Now: now})
		},
		Apply: func(cur Bill, in map[string]any, now time.Time) (Bill, error) {
			return ApplyBillInput(cur, in, now)
		},
		SetVersion: func(b Bill, v int64) Bill { b.Version = v; return b },
	}
}

// CommentBinding wires Comment into the pipeline. Comment content goes
// through moderation before every write; a rejected or failed review holds
// the comment as flagged.
func CommentBinding(store storage.RecordStore[CommentRecord], policy transform.Policy, mod pipeline.Moderator) pipeline.Binding[CommentRecord, Comment] {
	return pipeline.Binding[CommentRecord, Comment]{
		Entity:      "Comment",
		Schema:      SchemaComment,
		Transformer: CommentTransformer{Policy: policy},
		Store:       store,
		New: func(in map[string]any, id string, now time.Time) (Comment, error) {
			return NewCommentFromInput(in, Mint{ID: id, Now: now})
		},
		Apply: func(cur Comment, in map[string]any, now time.Time) (Comment, error) {
			return ApplyCommentInput(cur, in, now), nil
		},
		SetVersion: func(c Comment, v int64) Comment { c.Version = v; return c },
		Moderation: &pipeline.ModerationHook[Comment]{
			Moderator: mod,
			Content:   func(in map[string]any) string { s, _ := in["content"].(string); return s },
			Apply: func(c Comment, verdict string) Comment {
				switch verdict {
				case pipeline.VerdictApproved:
					c.Status = ModerationApproved
				default:
					c.Status = ModerationFlagged
				}
				return c
			},
		},
	}
}
