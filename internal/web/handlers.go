package web

import (
	"errors"
	"net/http"
	"time"

	"roofscope/internal/domain"
	"roofscope/internal/report"
	"roofscope/internal/service"
)

type createPhotoRequest struct {
	PhotoID    string `json:"photoId"`
	PropertyID string `json:"propertyId"`
	Bucket     string `json:"bucket"`
	StorageKey string `json:"storageKey"`
	Filename   string `json:"filename"`
}

func (s *Server) handleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	var req createPhotoRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.PhotoID == "" || req.PropertyID == "" || req.Bucket == "" || req.StorageKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photoId, propertyId, bucket and storageKey are required"})
		return
	}

	rec := &domain.PhotoRecord{
		PhotoID:    req.PhotoID,
		PropertyID: req.PropertyID,
		Bucket:     req.Bucket,
		StorageKey: req.StorageKey,
		Filename:   req.Filename,
	}
	if err := s.photos.Create(r.Context(), rec); err != nil {
		s.logger.Error("failed to register photo", "photo_id", req.PhotoID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register photo"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"photoId": req.PhotoID})
}

type createAnalysisRequest struct {
	AnalysisID string `json:"analysisId"`
	PhotoID    string `json:"photoId"`
	PropertyID string `json:"propertyId"`
	S3Bucket   string `json:"s3Bucket"`
	S3Key      string `json:"s3Key"`
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.AnalysisID == "" || req.PhotoID == "" || req.S3Bucket == "" || req.S3Key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysisId, photoId, s3Bucket and s3Key are required"})
		return
	}

	if err := s.analyses.Create(r.Context(), req.AnalysisID, req.PhotoID, req.PropertyID); err != nil {
		s.logger.Error("failed to create analysis record", "analysis_id", req.AnalysisID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create analysis record"})
		return
	}

	count, err := s.runner.Run(r.Context(), service.RunRequest{
		AnalysisID: req.AnalysisID,
		PhotoID:    req.PhotoID,
		PropertyID: req.PropertyID,
		Bucket:     req.S3Bucket,
		Key:        req.S3Key,
	})
	if err != nil {
		s.logger.Error("analysis failed", "analysis_id", req.AnalysisID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysisId":      req.AnalysisID,
		"status":          domain.StatusCompleted,
		"detectionsCount": count,
	})
}

type analysisResponse struct {
	AnalysisID   string                 `json:"analysisId"`
	PhotoID      string                 `json:"photoId"`
	PropertyID   string                 `json:"propertyId"`
	Status       domain.AnalysisStatus  `json:"status"`
	Detections   []domain.Detection     `json:"detections,omitempty"`
	Summary      domain.AnalysisSummary `json:"analysisSummary,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.analyses.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("failed to get analysis", "analysis_id", r.PathValue("id"), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get analysis"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		AnalysisID:   rec.AnalysisID,
		PhotoID:      rec.PhotoID,
		PropertyID:   rec.PropertyID,
		Status:       rec.Status,
		Detections:   rec.Detections,
		Summary:      rec.Summary,
		ErrorMessage: rec.ErrorMessage,
		CompletedAt:  rec.CompletedAt,
	})
}

type createReportRequest struct {
	PropertyID   string   `json:"propertyId"`
	PropertyName string   `json:"propertyName"`
	PhotoIDs     []string `json:"photoIds"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.PropertyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "propertyId is required"})
		return
	}

	result, err := s.reports.Generate(r.Context(), service.ReportRequest{
		PropertyID:   req.PropertyID,
		PropertyName: req.PropertyName,
		PhotoIDs:     req.PhotoIDs,
	})
	if errors.Is(err, report.ErrNoAnalyzablePhotos) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No photos with analysis found"})
		return
	}
	if err != nil {
		s.logger.Error("report generation failed", "property_id", req.PropertyID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate report"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reportKey":      result.ReportKey,
		"photosIncluded": result.PhotosIncluded,
	})
}
