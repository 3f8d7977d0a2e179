package entity

import (
	"time"

	"github.com/goccy/go-json"
)

// Storage records mirror the database rows: raw string identifiers, flat
// snake_case columns, enums as plain strings. They never carry branded types;
// the transformers are the only bridge back to the domain.

// UserRecord is the users row.
type UserRecord struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Newsletter  bool      `json:"newsletter"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BillRecord is the bills row. Sponsors is a JSON array of user identifiers
// stored as text.
type BillRecord struct {
	ID         string    `json:"id"`
	BillNumber string    `json:"bill_number"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Status     string    `json:"status"`
	Sponsors   string    `json:"sponsors"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StorageEquivalent reports whether two rows agree on every column the
// storage layer is authoritative for. Timestamps compare by instant, not
// representation.
func (r UserRecord) StorageEquivalent(o UserRecord) bool {
	return r.ID == o.ID &&
		r.Email == o.Email &&
		r.DisplayName == o.DisplayName &&
		r.Newsletter == o.Newsletter &&
		r.Version == o.Version &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.UpdatedAt.Equal(o.UpdatedAt)
}

// StorageEquivalent reports whether two rows agree on every authoritative
// column. Sponsor columns compare by the identifier list they encode, so the
// legacy empty spelling "" and the canonical "[]" are equivalent.
func (r BillRecord) StorageEquivalent(o BillRecord) bool {
	return r.ID == o.ID &&
		r.BillNumber == o.BillNumber &&
		r.Title == o.Title &&
		r.Summary == o.Summary &&
		r.Status == o.Status &&
		sameSponsorColumn(r.Sponsors, o.Sponsors) &&
		r.Version == o.Version &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.UpdatedAt.Equal(o.UpdatedAt)
}

func sameSponsorColumn(a, b string) bool {
	av, aok := decodeSponsorColumn(a)
	bv, bok := decodeSponsorColumn(b)
	if !aok || !bok {
		// Unparseable columns only match themselves.
		return a == b
	}
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

func decodeSponsorColumn(col string) ([]string, bool) {
	if col == "" {
		return nil, true
	}
	var ids []string
	if err := json.Unmarshal([]byte(col), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// CommentRecord is the comments row.
type CommentRecord struct {
	ID        string    `json:"id"`
	BillID    string    `json:"bill_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorageEquivalent reports whether two rows agree on every column the
// storage layer is authoritative for.
func (r CommentRecord) StorageEquivalent(o CommentRecord) bool {
	return r.ID == o.ID &&
		r.BillID == o.BillID &&
		r.AuthorID == o.AuthorID &&
		r.Content == o.Content &&
		r.Status == o.Status &&
		r.Version == o.Version &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.UpdatedAt.Equal(o.UpdatedAt)
}
