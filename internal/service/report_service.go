package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roofscope/internal/domain"
	"roofscope/internal/objectstore"
	"roofscope/internal/report"
	"roofscope/internal/store"
)

// reportAnalysisRepository is the subset of store.AnalysisStore that ReportService requires.
type reportAnalysisRepository interface {
	GetByPhotoID(ctx context.Context, photoID string) (*domain.AnalysisRecord, error)
}

// photoRepository is the subset of store.PhotoStore that ReportService requires.
type photoRepository interface {
	GetByID(ctx context.Context, photoID string) (*domain.PhotoRecord, error)
	ListByPropertyID(ctx context.Context, propertyID string) ([]*domain.PhotoRecord, error)
}

type ReportService struct {
	analyses      reportAnalysisRepository
	photos        photoRepository
	objects       objectstore.Store
	reportsBucket string
	logger        *slog.Logger
}

func NewReportService(
	analyses reportAnalysisRepository,
	photos photoRepository,
	objects objectstore.Store,
	reportsBucket string,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		analyses:      analyses,
		photos:        photos,
		objects:       objects,
		reportsBucket: reportsBucket,
		logger:        logger,
	}
}

type ReportRequest struct {
	PropertyID   string
	PropertyName string
	PhotoIDs     []string
}

type ReportResult struct {
	ReportKey      string
	PhotosIncluded int
}

// Generate assembles photo data sequentially, composes the document, and
// uploads it. A photo that cannot be gathered is logged and skipped; only a
// fully composed document is ever written to storage.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	photoIDs := req.PhotoIDs
	if len(photoIDs) == 0 {
		// No explicit selection means the whole property.
		records, err := s.photos.ListByPropertyID(ctx, req.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list property photos: %w", err)
		}
		for _, rec := range records {
			photoIDs = append(photoIDs, rec.PhotoID)
		}
	}

	s.logger.Info("report generation started",
		"property_id", req.PropertyID, "photos_requested", len(photoIDs))

	photos := make([]report.PhotoData, 0, len(photoIDs))
	for _, photoID := range photoIDs {
		data, err := s.gatherPhoto(ctx, photoID)
		if err != nil {
			s.logger.Error("skipping photo", "photo_id", photoID, "error", err)
			continue
		}
		photos = append(photos, *data)
	}

	if len(photos) == 0 {
		return nil, report.ErrNoAnalyzablePhotos
	}

	propertyName := req.PropertyName
	if propertyName == "" {
		propertyName = req.PropertyID
	}

	now := time.Now().UTC()
	doc, err := report.Compose(propertyName, now, photos)
	if err != nil {
		return nil, fmt.Errorf("failed to compose report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/report-%s.pdf", req.PropertyID, now.Format("20060102-150405"))
	if err := s.objects.Put(ctx, s.reportsBucket, key, "application/pdf", doc); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	s.logger.Info("report generation complete",
		"property_id", req.PropertyID, "report_key", key, "photos_included", len(photos))
	return &ReportResult{ReportKey: key, PhotosIncluded: len(photos)}, nil
}

// gatherPhoto resolves one photo's analysis record, photo record, and image
// bytes. Only completed analyses contribute to a report.
func (s *ReportService) gatherPhoto(ctx context.Context, photoID string) (*report.PhotoData, error) {
	analysis, err := s.analyses.GetByPhotoID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up analysis: %w", err)
	}
	if analysis == nil || analysis.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("no completed analysis for photo: %w", store.ErrRecordNotFound)
	}

	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up photo: %w", err)
	}
	if photo == nil {
		return nil, fmt.Errorf("photo record missing: %w", store.ErrRecordNotFound)
	}

	image, err := s.objects.Get(ctx, photo.Bucket, photo.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}

	return &report.PhotoData{
		Image:      image,
		Filename:   photo.Filename,
		Detections: analysis.Detections,
		Summary:    analysis.Summary,
	}, nil
}
