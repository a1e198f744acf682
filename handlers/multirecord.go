package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/saniya177/satellisense-backend/gemini"
	"github.com/saniya177/satellisense-backend/media"
	"github.com/saniya177/satellisense-backend/models"
)

// minimum input cardinalities for the multi-record operations
const (
	minCompareImages    = 2
	minTimeSeriesPoints = 2
	minPredictRecords   = 2
	minForecastPoints   = 3
)

// truncate shortens insight text for history summaries sent as context.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// resolveSelected walks the owner's records in insertion order and resolves
// image bytes for every record whose id is in the requested set, using the
// stored path first and the URL-tail fallback second. Records whose bytes
// cannot be recovered are skipped.
func (h *AnalysisHandler) resolveSelected(owner string, ids []string) (records []models.AnalysisRecord, paths []string, urls []string) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	for _, record := range h.Records.List(owner) {
		if !idSet[record.ID] {
			continue
		}
		path, ok := h.Uploads.ResolveRecord(record.ImagePath, record.ImageURL)
		if !ok {
			continue
		}
		records = append(records, record)
		paths = append(paths, path)
		urls = append(urls, record.ImageURL)
	}
	return records, paths, urls
}

// Compare handles POST /api/compare: multi-image comparison across stored
// records.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageIDs []string `json:"image_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if len(payload.ImageIDs) < minCompareImages {
		WriteAPIError(w, http.StatusBadRequest, CodeInsufficientData, "Need at least 2 images to compare")
		return
	}

	_, paths, urls := h.resolveSelected(user.Username, payload.ImageIDs)
	if len(paths) < minCompareImages {
		WriteAPIError(w, http.StatusNotFound, CodeNotFound,
			fmt.Sprintf("Could not find image files. Found %d image file(s). Please ensure images are uploaded first.", len(paths)))
		return
	}

	parts := make([]gemini.Part, 0, len(paths))
	for _, path := range paths {
		inline, err := media.EncodeInline(path, h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
		if err != nil {
			log.Printf("WARN: compare: failed to encode %s: %v", path, err)
			continue
		}
		parts = append(parts, gemini.Part{Image: &inline})
	}
	if len(parts) < minCompareImages {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal,
			fmt.Sprintf("Failed to process images. Only processed %d image(s).", len(parts)))
		return
	}

	comparison, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: gemini.CompareInstruction,
		System:      gemini.CompareSystem,
		Parts:       parts,
	})
	if err != nil {
		writeInferenceError(w, "compare", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"comparison":  comparison,
		"image_urls":  urls,
		"image_count": len(urls),
	})
}

// TimeSeries handles POST /api/timeseries: temporal analysis over selected
// records, images interleaved with their timestamps in chronological order.
func (h *AnalysisHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageIDs []string `json:"image_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	// below the minimum the inference client is never invoked
	if len(payload.ImageIDs) < minTimeSeriesPoints {
		WriteAPIError(w, http.StatusBadRequest, CodeInsufficientData, "Need at least 2 images for time series")
		return
	}

	records, paths, _ := h.resolveSelected(user.Username, payload.ImageIDs)
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Timestamp < records[order[b]].Timestamp
	})

	points := make([]map[string]string, 0, len(records))
	parts := make([]gemini.Part, 0, 2*len(records))
	for _, idx := range order {
		record := records[idx]
		inline, err := media.EncodeInline(paths[idx], h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
		if err != nil {
			log.Printf("WARN: time series: failed to encode %s: %v", paths[idx], err)
			continue
		}
		points = append(points, map[string]string{
			"id":        record.ID,
			"timestamp": record.Timestamp,
			"image_url": record.ImageURL,
			"area":      record.Area,
			"insights":  record.Insights,
		})
		parts = append(parts, gemini.Part{Text: fmt.Sprintf("Image from %s:", record.Timestamp)})
		parts = append(parts, gemini.Part{Image: &inline})
	}
	if len(points) < minTimeSeriesPoints {
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Insufficient time series data")
		return
	}

	analysis, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: gemini.TimeSeriesInstruction,
		System:      gemini.TimeSeriesSystem,
		Parts:       parts,
	})
	if err != nil {
		writeInferenceError(w, "time series", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"time_series_data": points,
		"analysis":         analysis,
		"data_points":      len(points),
	})
}

// DetectChanges handles POST /api/changes: AI change detection between two
// records, with a locally computed pixel-difference metric.
func (h *AnalysisHandler) DetectChanges(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Image1ID string `json:"image1_id"`
		Image2ID string `json:"image2_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Image1ID == "" || payload.Image2ID == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Both image1_id and image2_id are required")
		return
	}

	var missing []string
	paths := make([]string, 0, 2)
	for i, id := range []string{payload.Image1ID, payload.Image2ID} {
		record, err := h.Records.Find(user.Username, id)
		if err != nil {
			missing = append(missing, fmt.Sprintf("Image %d", i+1))
			continue
		}
		path, ok := h.Uploads.ResolveRecord(record.ImagePath, record.ImageURL)
		if !ok {
			missing = append(missing, fmt.Sprintf("Image %d", i+1))
			continue
		}
		paths = append(paths, path)
	}
	if len(missing) > 0 {
		WriteAPIError(w, http.StatusNotFound, CodeNotFound,
			fmt.Sprintf("Images not found: %s. Please ensure images are uploaded first.", strings.Join(missing, ", ")))
		return
	}

	inline1, err1 := media.EncodeInline(paths[0], h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
	inline2, err2 := media.EncodeInline(paths[1], h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
	if err1 != nil || err2 != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to process images for comparison")
		return
	}

	analysis, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: gemini.ChangeDetectionInstruction,
		System:      gemini.ChangeDetectionSystem,
		Parts:       gemini.ImageParts(inline1, inline2),
	})
	if err != nil {
		writeInferenceError(w, "change detection", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"analysis":          analysis,
		"change_percentage": changePercentage(paths[0], paths[1]),
	})
}

// changePercentage computes a coarse change metric: both images are fitted
// to a common small grid, and the mean absolute per-channel difference is
// expressed as a percentage. Decode failures yield 0.
func changePercentage(path1, path2 string) float64 {
	const gridSize = 128
	img1, err := imaging.Open(path1)
	if err != nil {
		return 0
	}
	img2, err := imaging.Open(path2)
	if err != nil {
		return 0
	}
	a := imaging.Resize(img1, gridSize, gridSize, imaging.Box)
	b := imaging.Resize(img2, gridSize, gridSize, imaging.Box)

	var total int64
	for i := 0; i < len(a.Pix) && i < len(b.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := int64(a.Pix[i+c]) - int64(b.Pix[i+c])
			if d < 0 {
				d = -d
			}
			total += d
		}
	}
	pct := float64(total) / float64(gridSize*gridSize*3*255) * 100
	return float64(int(pct*10)) / 10
}

// Forecast handles POST /api/forecast: trend forecasting from the textual
// insight history of the selected (or all) records.
func (h *AnalysisHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageIDs       []string `json:"image_ids"`
		ForecastPeriod string   `json:"forecast_period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if payload.ForecastPeriod == "" {
		payload.ForecastPeriod = "3 months"
	}

	idSet := make(map[string]bool, len(payload.ImageIDs))
	for _, id := range payload.ImageIDs {
		idSet[id] = true
	}

	records := h.Records.List(user.Username)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	var points []models.AnalysisRecord
	for _, record := range records {
		if len(idSet) == 0 || idSet[record.ID] {
			points = append(points, record)
		}
	}
	// below the minimum the inference client is never invoked
	if len(points) < minForecastPoints {
		WriteAPIError(w, http.StatusBadRequest, CodeInsufficientData, "Need at least 3 data points for trend forecasting")
		return
	}

	var summary strings.Builder
	for i, p := range points {
		fmt.Fprintf(&summary, "%d. %s (%s): %s\n", i+1, truncate(p.Timestamp, 10), p.Area, truncate(p.Insights, 200))
	}

	forecast, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: fmt.Sprintf("Time-series satellite data:\n\n%s\nForecast trends for the next %s. "+
			"Identify patterns, predict changes, and provide actionable insights.", summary.String(), payload.ForecastPeriod),
		System: gemini.ForecastSystem,
	})
	if err != nil {
		writeInferenceError(w, "forecast", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"forecast":        forecast,
		"data_points":     len(points),
		"forecast_period": payload.ForecastPeriod,
	})
}

// Predict handles POST /api/predict: predictive analysis over the history,
// optionally filtered by area label.
func (h *AnalysisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		AreaType    string `json:"area_type"`
		TimeHorizon string `json:"time_horizon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if payload.TimeHorizon == "" {
		payload.TimeHorizon = "6 months"
	}

	var relevant []models.AnalysisRecord
	for _, record := range h.Records.List(user.Username) {
		if payload.AreaType == "" || record.Area == payload.AreaType {
			relevant = append(relevant, record)
		}
	}
	if len(relevant) < minPredictRecords {
		WriteAPIError(w, http.StatusBadRequest, CodeInsufficientData, "Need at least 2 analyses for predictive analysis")
		return
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Timestamp < relevant[j].Timestamp
	})
	if len(relevant) > 5 {
		relevant = relevant[len(relevant)-5:]
	}

	var summary strings.Builder
	for _, record := range relevant {
		fmt.Fprintf(&summary, "Date: %s, Area: %s, Key insights: %s\n",
			truncate(record.Timestamp, 10), record.Area, truncate(record.Insights, 300))
	}

	prediction, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: fmt.Sprintf("Based on this historical satellite data analysis:\n\n%s\n"+
			"Predict what will happen in the next %s. Provide trends, potential changes, and recommendations.",
			summary.String(), payload.TimeHorizon),
		System: gemini.PredictionSystem,
	})
	if err != nil {
		writeInferenceError(w, "prediction", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"prediction":   prediction,
		"time_horizon": payload.TimeHorizon,
		"based_on":     len(relevant),
		"area_type":    payload.AreaType,
	})
}

// Anomaly handles POST /api/anomaly: anomaly detection on a stored record
// or, absent an id, the session's current image.
func (h *AnalysisHandler) Anomaly(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageID string `json:"image_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}

	imagePath, found := h.locateImage(user.Username, payload.ImageID)
	if !found {
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Image not found")
		return
	}

	inline, err := media.EncodeInline(imagePath, h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to process image")
		return
	}

	anomalies, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: gemini.AnomalyInstruction,
		System:      gemini.AnomalySystem,
		Parts:       gemini.ImageParts(inline),
	})
	if err != nil {
		writeInferenceError(w, "anomaly detection", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"anomalies": anomalies,
		"image_id":  payload.ImageID,
	})
}

// locateImage resolves image bytes for a record id, falling back to the
// session's current image when the id is empty or unknown.
func (h *AnalysisHandler) locateImage(owner, imageID string) (string, bool) {
	if imageID != "" {
		if record, err := h.Records.Find(owner, imageID); err == nil {
			if path, ok := h.Uploads.ResolveRecord(record.ImagePath, record.ImageURL); ok {
				return path, true
			}
		}
	}
	if bundle, err := h.Sessions.Current(owner); err == nil {
		if path, ok := h.Uploads.ResolveRecord(bundle.ImagePath, bundle.ImageURL); ok {
			return path, true
		}
	}
	return "", false
}

var comparisonKeywords = []string{
	"compare", "change", "difference", "over time", "last year", "before and after",
}

// Query handles POST /api/query: a natural-language question answered with
// the owner's analysis history as context.
func (h *AnalysisHandler) Query(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Query) == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Query is required")
		return
	}
	query := strings.TrimSpace(payload.Query)

	records := h.Records.List(user.Username)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	var context strings.Builder
	fmt.Fprintf(&context, "User has %d previous analyses:\n", len(records))
	for i, record := range records {
		if i >= 10 {
			break
		}
		area := record.Area
		if area == "" {
			area = "Unknown"
		}
		fmt.Fprintf(&context, "%d. %s - %s\n", i+1, area, truncate(record.Timestamp, 10))
		fmt.Fprintf(&context, "   Insights: %s...\n", truncate(record.Insights, 200))
	}

	response, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: fmt.Sprintf("User Query: %s\n\nAvailable Data Context:\n%s\n\n"+
			"Please analyze this query and provide a comprehensive answer. "+
			"If the query asks for comparisons over time, use the history data. "+
			"If it asks about specific features, reference the insights from relevant analyses.",
			query, context.String()),
		System: gemini.QuerySystem,
	})
	if err != nil {
		writeInferenceError(w, "natural language query", err)
		return
	}

	queryLower := strings.ToLower(query)
	needsComparison := false
	for _, kw := range comparisonKeywords {
		if strings.Contains(queryLower, kw) {
			needsComparison = true
			break
		}
	}

	suggested := make([]map[string]string, 0, 3)
	if needsComparison {
		for i, record := range records {
			if i >= 5 || len(suggested) >= 3 {
				break
			}
			if record.ImageURL == "" {
				continue
			}
			suggested = append(suggested, map[string]string{
				"id":        record.ID,
				"url":       record.ImageURL,
				"timestamp": record.Timestamp,
				"area":      record.Area,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"response":         response,
		"query":            query,
		"needs_comparison": needsComparison,
		"suggested_images": suggested,
	})
}

// Suggestions handles GET /api/suggestions. Users can ask anything, so no
// canned suggestions are returned.
func (h *AnalysisHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestUser(r); !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": []string{},
	})
}
