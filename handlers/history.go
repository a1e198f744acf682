package handlers

import (
	"net/http"
	"path/filepath"
	"sort"

	"github.com/saniya177/satellisense-backend/models"
)

// HistoryEntry is the simplified record view returned by the history list.
type HistoryEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Area      string `json:"area"`
	ImageURL  string `json:"image_url"`
}

// displayURL recomputes the public URL from the stored file when it still
// exists, so responses track the current base URL; the persisted URL is the
// fallback.
func (h *AnalysisHandler) displayURL(record *models.AnalysisRecord) string {
	if path, ok := h.Uploads.ResolveRecord(record.ImagePath, record.ImageURL); ok {
		return h.Uploads.PublicURL(filepath.Base(path))
	}
	return record.ImageURL
}

// History handles GET /api/history: the owner's analysis records, newest
// first. Records are stored in insertion order; chronology comes from
// sorting by timestamp here.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	records := h.Records.List(user.Username)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	entries := make([]HistoryEntry, 0, len(records))
	for i := range records {
		entries = append(entries, HistoryEntry{
			ID:        records[i].ID,
			Timestamp: records[i].Timestamp,
			Area:      records[i].Area,
			ImageURL:  h.displayURL(&records[i]),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": entries,
		"count":   len(entries),
	})
}

// Analytics handles GET /api/analytics: aggregate statistics over the
// owner's analysis history.
func (h *AnalysisHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	records := h.Records.List(user.Username)

	areaCounts := make(map[string]int)
	analysesByDate := make(map[string]int)
	for i := range records {
		area := records[i].Area
		if area == "" {
			area = "Unknown"
		}
		areaCounts[area]++
		if len(records[i].Timestamp) >= 10 {
			analysesByDate[records[i].Timestamp[:10]]++
		}
	}

	sorted := make([]models.AnalysisRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}

	recent := make([]map[string]string, 0, len(sorted))
	for i := range sorted {
		recent = append(recent, map[string]string{
			"id":        sorted[i].ID,
			"timestamp": sorted[i].Timestamp,
			"area":      sorted[i].Area,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"statistics": map[string]interface{}{
			"total_analyses":    len(records),
			"area_distribution": areaCounts,
			"analyses_by_date":  analysesByDate,
			"recent_count":      len(recent),
		},
		"recent_analyses": recent,
	})
}
