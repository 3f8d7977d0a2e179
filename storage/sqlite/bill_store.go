package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chanuka/bound/entity"
	"github.com/chanuka/bound/storage"
)

type billStore struct {
	store *Store
}

var _ storage.RecordStore[entity.BillRecord] = (*billStore)(nil)

func (s *billStore) Create(ctx context.Context, rec entity.BillRecord) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO bills (id, bill_number, title, summary, status, sponsors, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.BillNumber, rec.Title, rec.Summary, rec.Status, rec.Sponsors,
		rec.Version, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapConstraint("bills", err)
	}
	return nil
}

func (s *billStore) Get(ctx context.Context, id string) (entity.BillRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, bill_number, title, summary, status, sponsors, version, created_at, updated_at
		FROM bills WHERE id = ?
	`, id)

	var rec entity.BillRecord
	err := row.Scan(&rec.ID, &rec.BillNumber, &rec.Title, &rec.Summary, &rec.Status,
		&rec.Sponsors, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.BillRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return entity.BillRecord{}, fmt.Errorf("scanning bill: %w", err)
	}
	return rec, nil
}

func (s *billStore) Update(ctx context.Context, rec entity.BillRecord) (entity.BillRecord, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.BillRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE bills
		SET bill_number = ?, title = ?, summary = ?, status = ?, sponsors = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, rec.BillNumber, rec.Title, rec.Summary, rec.Status, rec.Sponsors,
		rec.UpdatedAt, rec.ID, rec.Version)
	if err != nil {
		return entity.BillRecord{}, mapConstraint("bills", err)
	}
	if err := staleOrMissing(ctx, tx, "bills", rec.ID, res); err != nil {
		return entity.BillRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.BillRecord{}, fmt.Errorf("committing transaction: %w", err)
	}
	rec.Version++
	return rec, nil
}

func (s *billStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return mapConstraint("bills", err)
	}
	return noneDeleted(res)
}
