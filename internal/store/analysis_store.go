package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roofscope/internal/domain"
)

// ErrRecordNotFound is returned by report assembly helpers when a required
// analysis or photo record is missing.
var ErrRecordNotFound = errors.New("record not found")

type AnalysisStore struct {
	db *sql.DB
}

func NewAnalysisStore(db *sql.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Create inserts a pending analysis record. Re-triggering an existing
// analysis is allowed, so an already-present id is not an error.
func (s *AnalysisStore) Create(ctx context.Context, analysisID, photoID, propertyID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO analyses (analysis_id, photo_id, property_id, status)
		VALUES (?, ?, ?, ?)
	`, analysisID, photoID, propertyID, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (s *AnalysisStore) GetByID(ctx context.Context, analysisID string) (*domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT analysis_id, photo_id, property_id, status, detections,
		       analysis_summary, error_message, completed_at, created_at
		FROM analyses WHERE analysis_id = ?
	`, analysisID)
	return scanAnalysis(row)
}

// GetByPhotoID looks up the newest analysis for a photo. This is the lookup
// report generation uses.
func (s *AnalysisStore) GetByPhotoID(ctx context.Context, photoID string) (*domain.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT analysis_id, photo_id, property_id, status, detections,
		       analysis_summary, error_message, completed_at, created_at
		FROM analyses WHERE photo_id = ?
		ORDER BY created_at DESC, analysis_id DESC LIMIT 1
	`, photoID)
	return scanAnalysis(row)
}

// SetStatus updates only the status field.
func (s *AnalysisStore) SetStatus(ctx context.Context, analysisID string, status domain.AnalysisStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE analyses SET status = ? WHERE analysis_id = ?
	`, status, analysisID)
	if err != nil {
		return fmt.Errorf("failed to update analysis status: %w", err)
	}
	return requireRow(result)
}

// MarkCompleted transitions the record to completed and persists the
// detections, the provider's summary payload, and the completion time.
func (s *AnalysisStore) MarkCompleted(ctx context.Context, analysisID string, detections []domain.Detection, summary domain.AnalysisSummary, completedAt time.Time) error {
	data, err := json.Marshal(detections)
	if err != nil {
		return fmt.Errorf("failed to marshal detections: %w", err)
	}

	if len(summary) == 0 {
		summary = domain.AnalysisSummary("{}")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE analyses
		SET status = ?, detections = ?, analysis_summary = ?, completed_at = ?, error_message = NULL
		WHERE analysis_id = ?
	`, domain.StatusCompleted, string(data), string(summary), completedAt.UTC(), analysisID)
	if err != nil {
		return fmt.Errorf("failed to mark analysis completed: %w", err)
	}
	return requireRow(result)
}

// MarkFailed transitions the record to failed with a human-readable cause.
func (s *AnalysisStore) MarkFailed(ctx context.Context, analysisID, message string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE analyses SET status = ?, error_message = ? WHERE analysis_id = ?
	`, domain.StatusFailed, message, analysisID)
	if err != nil {
		return fmt.Errorf("failed to mark analysis failed: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("analysis not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.AnalysisRecord, error) {
	rec := &domain.AnalysisRecord{}
	var (
		detections   sql.NullString
		summary      sql.NullString
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := row.Scan(&rec.AnalysisID, &rec.PhotoID, &rec.PropertyID, &rec.Status,
		&detections, &summary, &errorMessage, &completedAt, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if detections.Valid && detections.String != "" {
		if err := json.Unmarshal([]byte(detections.String), &rec.Detections); err != nil {
			return nil, fmt.Errorf("failed to decode stored detections: %w", err)
		}
	}
	if summary.Valid {
		rec.Summary = domain.AnalysisSummary(summary.String)
	}
	if errorMessage.Valid {
		rec.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}

	return rec, nil
}
