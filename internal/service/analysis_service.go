package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"roofscope/internal/domain"
	"roofscope/internal/objectstore"
	"roofscope/internal/vision"
)

// analysisRepository is the subset of store.AnalysisStore that AnalysisService requires.
type analysisRepository interface {
	SetStatus(ctx context.Context, analysisID string, status domain.AnalysisStatus) error
	MarkCompleted(ctx context.Context, analysisID string, detections []domain.Detection, summary domain.AnalysisSummary, completedAt time.Time) error
	MarkFailed(ctx context.Context, analysisID, message string) error
}

type AnalysisService struct {
	analyses      analysisRepository
	objects       objectstore.Store
	analyzer      vision.Analyzer
	minConfidence float64
	logger        *slog.Logger
}

func NewAnalysisService(
	analyses analysisRepository,
	objects objectstore.Store,
	analyzer vision.Analyzer,
	minConfidence float64,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		analyses:      analyses,
		objects:       objects,
		analyzer:      analyzer,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// RunRequest identifies one photo analysis: the record to drive through the
// state machine and the object to fetch.
type RunRequest struct {
	AnalysisID string
	PhotoID    string
	PropertyID string
	Bucket     string
	Key        string
}

// Run drives a single analysis from pending to a terminal state: fetch the
// image, call the provider, persist the result. Any failure marks the record
// failed and is returned to the caller, which decides on retry. Returns the
// number of detections persisted.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (int, error) {
	s.logger.Info("analysis started",
		"analysis_id", req.AnalysisID, "photo_id", req.PhotoID, "property_id", req.PropertyID)

	// Best-effort: a failed status write is not fatal to the analysis itself.
	if err := s.analyses.SetStatus(ctx, req.AnalysisID, domain.StatusProcessing); err != nil {
		s.logger.Error("failed to mark analysis processing", "analysis_id", req.AnalysisID, "error", err)
	}

	image, err := s.objects.Get(ctx, req.Bucket, req.Key)
	if err != nil {
		return 0, s.fail(ctx, req.AnalysisID, "failed to fetch image", err)
	}

	mediaType := MediaTypeForKey(req.Key)
	s.logger.Info("provider analysis started",
		"analysis_id", req.AnalysisID, "media_type", mediaType, "bytes", len(image))

	result, err := s.analyzer.Analyze(ctx, image, mediaType)
	if err != nil {
		return 0, s.fail(ctx, req.AnalysisID, "provider analysis failed", err)
	}

	for _, d := range result.Detections {
		if d.Confidence != nil && *d.Confidence < s.minConfidence {
			s.logger.Info("low confidence detection",
				"analysis_id", req.AnalysisID, "label", d.Label, "confidence", *d.Confidence)
		}
	}

	if err := s.analyses.MarkCompleted(ctx, req.AnalysisID, result.Detections, result.Summary, time.Now().UTC()); err != nil {
		return 0, s.fail(ctx, req.AnalysisID, "failed to persist result", err)
	}

	s.logger.Info("analysis complete",
		"analysis_id", req.AnalysisID, "detections", len(result.Detections))
	return len(result.Detections), nil
}

// fail records the terminal failed state, then hands the original error back
// up so the invoking layer can decide whether to retry.
func (s *AnalysisService) fail(ctx context.Context, analysisID, cause string, err error) error {
	wrapped := fmt.Errorf("%s: %w", cause, err)
	if markErr := s.analyses.MarkFailed(ctx, analysisID, wrapped.Error()); markErr != nil {
		s.logger.Error("failed to mark analysis failed", "analysis_id", analysisID, "error", markErr)
	}
	return wrapped
}

// MediaTypeForKey infers an image media type from the storage key's extension.
func MediaTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
