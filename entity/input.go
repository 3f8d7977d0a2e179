package entity

import (
	"time"

	"github.com/chanuka/bound"
	"github.com/chanuka/bound/transform"
)

// Mint carries the server-assigned parts of a freshly created entity: the
// identifier and the creation instant. Clients never supply either.
type Mint struct {
	ID  string
	Now time.Time
}

// NewUserFromInput builds a User from a validated input map.
func NewUserFromInput(in map[string]any, m Mint) (User, error) {
	id, err := transform.ParseID[UserKind](m.ID)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:          id,
		Email:       str(in, "email"),
		DisplayName: str(in, "displayName"),
		Newsletter:  boolean(in, "newsletter"),
		Version:     1,
		CreatedAt:   m.Now,
		UpdatedAt:   m.Now,
	}, nil
}

// ApplyUserInput overlays a validated input map onto an existing User. The
// identifier, version, and creation instant never move.
func ApplyUserInput(u User, in map[string]any, now time.Time) User {
	u.Email = str(in, "email")
	u.DisplayName = str(in, "displayName")
	u.Newsletter = boolean(in, "newsletter")
	u.UpdatedAt = now
	return u
}

// NewBillFromInput builds a Bill from a validated input map.
func NewBillFromInput(in map[string]any, m Mint) (Bill, error) {
	id, err := transform.ParseID[BillKind](m.ID)
	if err != nil {
		return Bill{}, err
	}
	sponsors, err := sponsorIDs(in)
	if err != nil {
		return Bill{}, err
	}
	return Bill{
		ID:         id,
		BillNumber: str(in, "billNumber"),
		Title:      str(in, "title"),
		Summary:    str(in, "summary"),
		Status:     BillStatus(str(in, "status")),
		SponsorIDs: sponsors,
		Version:    1,
		CreatedAt:  m.Now,
		UpdatedAt:  m.Now,
	}, nil
}

// ApplyBillInput overlays a validated input map onto an existing Bill.
func ApplyBillInput(b Bill, in map[string]any, now time.Time) (Bill, error) {
	sponsors, err := sponsorIDs(in)
	if err != nil {
		return Bill{}, err
	}
	b.BillNumber = str(in, "billNumber")
	b.Title = str(in, "title")
	b.Summary = str(in, "summary")
	b.Status = BillStatus(str(in, "status"))
	b.SponsorIDs = sponsors
	b.UpdatedAt = now
	return b, nil
}

// NewCommentFromInput builds a Comment from a validated input map. Comments
// start pending; the moderation step decides approved or flagged before the
// write.
func NewCommentFromInput(in map[string]any, m Mint) (Comment, error) {
	id, err := transform.ParseID[CommentKind](m.ID)
	if err != nil {
		return Comment{}, err
	}
	billID, err := transform.ParseID[BillKind](str(in, "billId"))
	if err != nil {
		return Comment{}, err
	}
	authorID, err := transform.ParseID[UserKind](str(in, "authorId"))
	if err != nil {
		return Comment{}, err
	}
	return Comment{
		ID:        id,
		BillID:    billID,
		AuthorID:  authorID,
		Content:   str(in, "content"),
		Status:    ModerationPending,
		Version:   1,
		CreatedAt: m.Now,
		UpdatedAt: m.Now,
	}, nil
}

// ApplyCommentInput overlays a validated input map onto an existing Comment.
// Edited content goes back through moderation, so the status resets to
// pending.
func ApplyCommentInput(c Comment, in map[string]any, now time.Time) Comment {
	c.Content = str(in, "content")
	c.Status = ModerationPending
	c.UpdatedAt = now
	return c
}

func str(in map[string]any, key string) string {
	s, _ := in[key].(string)
	return s
}

func boolean(in map[string]any, key string) bool {
	b, _ := in[key].(bool)
	return b
}

func sponsorIDs(in map[string]any) ([]transform.ID[UserKind], error) {
	raw, _ := in["sponsorIds"].([]any)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]transform.ID[UserKind], 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, &bound.TransformContractError{Entity: "Bill", Field: "sponsorIds", Reason: "non-string sponsor survived validation"}
		}
		id, err := transform.ParseID[UserKind](s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
