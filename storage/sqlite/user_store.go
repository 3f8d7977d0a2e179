package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chanuka/bound/entity"
	"github.com/chanuka/bound/storage"
)

type userStore struct {
	store *Store
}

var _ storage.RecordStore[entity.UserRecord] = (*userStore)(nil)

func (s *userStore) Create(ctx context.Context, rec entity.UserRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, newsletter, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Email, rec.DisplayName, rec.Newsletter, rec.Version, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapConstraint("users", err)
	}
	return nil
}

func (s *userStore) Get(ctx context.Context, id string) (entity.UserRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, newsletter, version, created_at, updated_at
		FROM users WHERE id = ?
	`, id)

	var rec entity.UserRecord
	err := row.Scan(&rec.ID, &rec.Email, &rec.DisplayName, &rec.Newsletter,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.UserRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return entity.UserRecord{}, fmt.Errorf("scanning user: %w", err)
	}
	return rec, nil
}

// Update applies the record if the stored version still matches rec.Version.
func (s *userStore) Update(ctx context.Context, rec entity.UserRecord) (entity.UserRecord, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.UserRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET email = ?, display_name = ?, newsletter = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, rec.Email, rec.DisplayName, rec.Newsletter, rec.UpdatedAt, rec.ID, rec.Version)
	if err != nil {
		return entity.UserRecord{}, mapConstraint("users", err)
	}
	if err := staleOrMissing(ctx, tx, "users", rec.ID, res); err != nil {
		return entity.UserRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.UserRecord{}, fmt.Errorf("committing transaction: %w", err)
	}
	rec.Version++
	return rec, nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return mapConstraint("users", err)
	}
	return noneDeleted(res)
}
