package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chanuka/bound/entity"
	"github.com/chanuka/bound/storage"
)

type commentStore struct {
	store *Store
}

var _ storage.RecordStore[entity.CommentRecord] = (*commentStore)(nil)

func (s *commentStore) Create(ctx context.Context, rec entity.CommentRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO comments (id, bill_id, author_id, content, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.BillID, rec.AuthorID, rec.Content, rec.Status,
		rec.Version, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapConstraint("comments", err)
	}
	return nil
}

func (s *commentStore) Get(ctx context.Context, id string) (entity.CommentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, bill_id, author_id, content, status, version, created_at, updated_at
		FROM comments WHERE id = ?
	`, id)

	var rec entity.CommentRecord
	err := row.Scan(&rec.ID, &rec.BillID, &rec.AuthorID, &rec.Content, &rec.Status,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.CommentRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return entity.CommentRecord{}, fmt.Errorf("scanning comment: %w", err)
	}
	return rec, nil
}

func (s *commentStore) Update(ctx context.Context, rec entity.CommentRecord) (entity.CommentRecord, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.CommentRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE comments
		SET content = ?, status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, rec.Content, rec.Status, rec.UpdatedAt, rec.ID, rec.Version)
	if err != nil {
		return entity.CommentRecord{}, mapConstraint("comments", err)
	}
	if err := staleOrMissing(ctx, tx, "comments", rec.ID, res); err != nil {
		return entity.CommentRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.CommentRecord{}, fmt.Errorf("committing transaction: %w", err)
	}
	rec.Version++
	return rec, nil
}

func (s *commentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return mapConstraint("comments", err)
	}
	return noneDeleted(res)
}
