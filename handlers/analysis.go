package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/saniya177/satellisense-backend/charts"
	"github.com/saniya177/satellisense-backend/config"
	"github.com/saniya177/satellisense-backend/gemini"
	"github.com/saniya177/satellisense-backend/insights"
	"github.com/saniya177/satellisense-backend/media"
	"github.com/saniya177/satellisense-backend/models"
	"github.com/saniya177/satellisense-backend/repository"
	"github.com/saniya177/satellisense-backend/session"
)

// AnalysisHandler owns the analysis flows: single and batch analysis, chat
// over the current image, multi-record operations and preprocessing.
type AnalysisHandler struct {
	Cfg         config.Config
	Records     repository.AnalysisRepository
	Uploads     *media.UploadStore
	Charts      *charts.Renderer
	Inference   gemini.Client
	Sessions    *session.Store
	Annotations repository.AnnotationRepository
}

// analyzeOne stores an uploaded file, runs inference on it and appends the
// resulting analysis record. Shared by Analyze and BatchAnalyze.
func (h *AnalysisHandler) analyzeOne(r *http.Request, owner, area, instruction, system string, file multipart.File, declaredName string) (*models.AnalysisRecord, error) {
	path, storedName, err := h.Uploads.Save(owner, declaredName, file)
	if err != nil {
		return nil, err
	}
	imageURL := h.Uploads.PublicURL(storedName)

	inline, err := media.EncodeInline(path, h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
	if err != nil {
		return nil, err
	}

	insightText, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: instruction,
		System:      system,
		Parts:       gemini.ImageParts(inline),
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &models.AnalysisRecord{
		ID:         models.AnalysisID(owner, now),
		Timestamp:  now.Format(time.RFC3339),
		Area:       area,
		ImageURL:   imageURL,
		ImagePath:  path,
		Insights:   insightText,
		CapturedAt: media.CaptureTime(path),
	}
	h.Records.Append(owner, record)
	return record, nil
}

// Analyze handles POST /api/analyze: multipart file + area form field.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(int64(h.Cfg.MaxUploadBytes)); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid multipart form")
		return
	}
	area := r.FormValue("area")
	file, header, err := r.FormFile("file")
	if err != nil || area == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Missing file or area field.")
		return
	}
	defer file.Close()

	record, err := h.analyzeOne(r, user.Username, area, gemini.AnalyzeInstruction, gemini.AnalyzeSystem(area), file, header.Filename)
	if err != nil {
		h.writeAnalysisError(w, "analyze", err)
		return
	}

	chartData := insights.ExtractChartData(record.Insights)
	if err := h.Charts.Render(user.Username, chartData); err != nil {
		// chart generation failures are logged, never fatal to the analysis
		log.Printf("WARN: chart generation failed for %s: %v", user.Username, err)
	}

	h.Sessions.SetCurrent(user.Username, session.Bundle{
		ImagePath: record.ImagePath,
		ImageURL:  record.ImageURL,
		Area:      area,
		Insights:  record.Insights,
		ChartData: chartData,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"analysis_id":  record.ID,
		"ai_summary":   record.Insights,
		"image_url":    record.ImageURL,
		"chart_data":   chartData,
		"chat_history": h.Sessions.ChatHistory(user.Username),
	})
}

// BatchAnalyze handles POST /api/analyze/batch: multiple files, one area.
// Files that fail validation or inference are skipped and logged; the
// response carries the records that succeeded.
func (h *AnalysisHandler) BatchAnalyze(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(int64(h.Cfg.MaxUploadBytes)); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid multipart form")
		return
	}
	area := r.FormValue("area")
	var fileHeaders []*multipart.FileHeader
	if r.MultipartForm != nil {
		fileHeaders = r.MultipartForm.File["files"]
	}
	if len(fileHeaders) == 0 || area == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Missing files or area")
		return
	}

	results := make([]map[string]interface{}, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			log.Printf("WARN: batch analyze: failed to open %s: %v", fh.Filename, err)
			continue
		}
		record, err := h.analyzeOne(r, user.Username, area, gemini.BatchInstruction, gemini.BatchSystem(area), file, fh.Filename)
		file.Close()
		if err != nil {
			log.Printf("WARN: batch analyze: %s skipped: %v", fh.Filename, err)
			continue
		}
		results = append(results, map[string]interface{}{
			"filename":    fh.Filename,
			"image_url":   record.ImageURL,
			"insights":    record.Insights,
			"analysis_id": record.ID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// writeAnalysisError maps analysis-flow failures onto the API error
// taxonomy.
func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, op string, err error) {
	var transportErr *gemini.TransportError
	var malformedErr *gemini.MalformedResponseError
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		WriteAPIError(w, http.StatusBadRequest, CodeUnsupportedType, "Unsupported file type.")
	case errors.As(err, &transportErr), errors.As(err, &malformedErr):
		writeInferenceError(w, op, err)
	default:
		log.Printf("ERROR: %s failed: %v", op, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Invalid image processing.")
	}
}
