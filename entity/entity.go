// Package entity holds the civic entities the platform moves across its
// boundaries: users, bills, and comments. Each entity exists twice, as a
// storage record in the storage layer's vocabulary and as a domain value with
// branded identifiers, with a transformer pair bridging the two.
package entity

import (
	"time"

	"github.com/chanuka/bound/transform"
)

// Marker kinds brand identifiers per entity.

type UserKind struct{}

func (UserKind) Entity() string { return "User" }

type BillKind struct{}

func (BillKind) Entity() string { return "Bill" }

type CommentKind struct{}

func (CommentKind) Entity() string { return "Comment" }

// BillStatus is the lifecycle stage of a bill.
type BillStatus string

const (
	BillDraft      BillStatus = "draft"
	BillIntroduced BillStatus = "introduced"
	BillPassed     BillStatus = "passed"
	BillRejected   BillStatus = "rejected"
)

// ModerationStatus is the moderation verdict on a comment. Only approved
// comments are served to other users; flagged covers both genuine flags and
// moderation-service failures, which are never treated as approval.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationFlagged  ModerationStatus = "flagged"
)

// User is a registered participant.
type User struct {
	ID          transform.ID[UserKind] `json:"id"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"displayName"`
	Newsletter  bool                   `json:"newsletter"`
	Version     int64                  `json:"version"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// Bill is a piece of legislation under discussion.
type Bill struct {
	ID         transform.ID[BillKind]   `json:"id"`
	BillNumber string                   `json:"billNumber"`
	Title      string                   `json:"title"`
	Summary    string                   `json:"summary"`
	Status     BillStatus               `json:"status"`
	SponsorIDs []transform.ID[UserKind] `json:"sponsorIds"`
	Version    int64                    `json:"version"`
	CreatedAt  time.Time                `json:"createdAt"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

// Comment is a user's remark on a bill.
type Comment struct {
	ID        transform.ID[CommentKind] `json:"id"`
	BillID    transform.ID[BillKind]    `json:"billId"`
	AuthorID  transform.ID[UserKind]    `json:"authorId"`
	Content   string                    `json:"content"`
	Status    ModerationStatus          `json:"status"`
	Version   int64                     `json:"version"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}
