package entity

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/chanuka/bound/transform"
)

// UserTransformer bridges UserRecord and User.
type UserTransformer struct {
	Policy transform.Policy
}

var _ transform.Transformer[UserRecord, User] = UserTransformer{}

func (t UserTransformer) ToDomain(rec UserRecord) (User, error) {
	id, err := transform.ParseID[UserKind](rec.ID)
	if err != nil {
		if perr := t.Policy.Violation("User", "id", err.Error()); perr != nil {
			return User{}, perr
		}
	}
	return User{
		ID:          id,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Newsletter:  rec.Newsletter,
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func (t UserTransformer) ToStorage(ent User) (UserRecord, error) {
	if ent.ID.IsZero() {
		if perr := t.Policy.Violation("User", "id", "zero identifier"); perr != nil {
			return UserRecord{}, perr
		}
	}
	return UserRecord{
		ID:          ent.ID.String(),
		Email:       ent.Email,
		DisplayName: ent.DisplayName,
		Newsletter:  ent.Newsletter,
		Version:     ent.Version,
		CreatedAt:   ent.CreatedAt,
		UpdatedAt:   ent.UpdatedAt,
	}, nil
}

// BillTransformer bridges BillRecord and Bill. Sponsors cross the boundary as
// a JSON text column and become branded user identifiers in the domain.
type BillTransformer struct {
	Policy transform.Policy
}

var _ transform.Transformer[BillRecord, Bill] = BillTransformer{}

func (t BillTransformer) ToDomain(rec BillRecord) (Bill, error) {
	id, err := transform.ParseID[BillKind](rec.ID)
	if err != nil {
		if perr := t.Policy.Violation("Bill", "id", err.Error()); perr != nil {
			return Bill{}, perr
		}
	}

	status := BillStatus(rec.Status)
	if !validBillStatus(status) {
		if perr := t.Policy.Violation("Bill", "status", fmt.Sprintf("unknown status %q", rec.Status)); perr != nil {
			return Bill{}, perr
		}
		status = BillDraft
	}

	var sponsors []transform.ID[UserKind]
	if rec.Sponsors != "" {
		var raw []string
		if err := json.Unmarshal([]byte(rec.Sponsors), &raw); err != nil {
			if perr := t.Policy.Violation("Bill", "sponsors", "unparseable sponsors column"); perr != nil {
				return Bill{}, perr
			}
			raw = nil
		}
		for _, s := range raw {
			sid, err := transform.ParseID[UserKind](s)
			if err != nil {
				if perr := t.Policy.Violation("Bill", "sponsors", err.Error()); perr != nil {
					return Bill{}, perr
				}
				continue
			}
			sponsors = append(sponsors, sid)
		}
	}

	return Bill{
		ID:         id,
		BillNumber: rec.BillNumber,
		Title:      rec.Title,
		Summary:    rec.Summary,
		Status:     status,
		SponsorIDs: sponsors,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (t BillTransformer) ToStorage(ent Bill) (BillRecord, error) {
	if ent.ID.IsZero() {
		if perr := t.Policy.Violation("Bill", "id", "zero identifier"); perr != nil {
			return BillRecord{}, perr
		}
	}
	if !validBillStatus(ent.Status) {
		if perr := t.Policy.Violation("Bill", "status", fmt.Sprintf("unknown status %q", ent.Status)); perr != nil {
			return BillRecord{}, perr
		}
		ent.Status = BillDraft
	}

	// An empty sponsor set is always spelled "[]" so the column holds one
	// canonical value regardless of how the entity came to be empty.
	raw := make([]string, 0, len(ent.SponsorIDs))
	for _, sid := range ent.SponsorIDs {
		raw = append(raw, sid.String())
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return BillRecord{}, err
	}
	sponsors := string(b)

	return BillRecord{
		ID:         ent.ID.String(),
		BillNumber: ent.BillNumber,
		Title:      ent.Title,
		Summary:    ent.Summary,
		Status:     string(ent.Status),
		Sponsors:   sponsors,
		Version:    ent.Version,
		CreatedAt:  ent.CreatedAt,
		UpdatedAt:  ent.UpdatedAt,
	}, nil
}

// CommentTransformer bridges CommentRecord and Comment.
type CommentTransformer struct {
	Policy transform.Policy
}

var _ transform.Transformer[CommentRecord, Comment] = CommentTransformer{}

func (t CommentTransformer) ToDomain(rec CommentRecord) (Comment, error) {
	id, err := transform.ParseID[CommentKind](rec.ID)
	if err != nil {
		if perr := t.Policy.Violation("Comment", "id", err.Error()); perr != nil {
			return Comment{}, perr
		}
	}
	billID, err := transform.ParseID[BillKind](rec.BillID)
	if err != nil {
		if perr := t.Policy.Violation("Comment", "bill_id", err.Error()); perr != nil {
			return Comment{}, perr
		}
	}
	authorID, err := transform.ParseID[UserKind](rec.AuthorID)
	if err != nil {
		if perr := t.Policy.Violation("Comment", "author_id", err.Error()); perr != nil {
			return Comment{}, perr
		}
	}

	status := ModerationStatus(rec.Status)
	if !validModerationStatus(status) {
		if perr := t.Policy.Violation("Comment", "status", fmt.Sprintf("unknown status %q", rec.Status)); perr != nil {
			return Comment{}, perr
		}
		// Fail closed: an unreadable verdict never reads as approved.
		status = ModerationFlagged
	}

	return Comment{
		ID:        id,
		BillID:    billID,
		AuthorID:  authorID,
		Content:   rec.Content,
		Status:    status,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (t CommentTransformer) ToStorage(ent Comment) (CommentRecord, error) {
	if ent.ID.IsZero() {
		if perr := t.Policy.Violation("Comment", "id", "zero identifier"); perr != nil {
			return CommentRecord{}, perr
		}
	}
	if !validModerationStatus(ent.Status) {
		if perr := t.Policy.Violation("Comment", "status", fmt.Sprintf("unknown status %q", ent.Status)); perr != nil {
			return CommentRecord{}, perr
		}
		ent.Status = ModerationFlagged
	}
	return CommentRecord{
		ID:        ent.ID.String(),
		BillID:    ent.BillID.String(),
		AuthorID:  ent.AuthorID.String(),
		Content:   ent.Content,
		Status:    string(ent.Status),
		Version:   ent.Version,
		CreatedAt: ent.CreatedAt,
		UpdatedAt: ent.UpdatedAt,
	}, nil
}

func validBillStatus(s BillStatus) bool {
	switch s {
	case BillDraft, BillIntroduced, BillPassed, BillRejected:
		return true
	}
	return false
}

func validModerationStatus(s ModerationStatus) bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationFlagged:
		return true
	}
	return false
}
