package store

import (
	"context"
	"database/sql"
	"fmt"

	"roofscope/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) Create(ctx context.Context, rec *domain.PhotoRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (photo_id, property_id, bucket, storage_key, filename)
		VALUES (?, ?, ?, ?, ?)
	`, rec.PhotoID, rec.PropertyID, rec.Bucket, rec.StorageKey, rec.Filename)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

func (s *PhotoStore) GetByID(ctx context.Context, photoID string) (*domain.PhotoRecord, error) {
	rec := &domain.PhotoRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT photo_id, property_id, bucket, storage_key, filename, uploaded_at
		FROM photos WHERE photo_id = ?
	`, photoID).Scan(&rec.PhotoID, &rec.PropertyID, &rec.Bucket, &rec.StorageKey, &rec.Filename, &rec.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return rec, nil
}

func (s *PhotoStore) ListByPropertyID(ctx context.Context, propertyID string) ([]*domain.PhotoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT photo_id, property_id, bucket, storage_key, filename, uploaded_at
		FROM photos WHERE property_id = ? ORDER BY uploaded_at ASC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.PhotoRecord
	for rows.Next() {
		rec := &domain.PhotoRecord{}
		if err := rows.Scan(&rec.PhotoID, &rec.PropertyID, &rec.Bucket, &rec.StorageKey, &rec.Filename, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}
