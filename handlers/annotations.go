package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/saniya177/satellisense-backend/models"
	"github.com/saniya177/satellisense-backend/repository"
)

// SaveAnnotation handles POST /api/annotations: stores a point annotation
// against an analyzed image.
func (h *AnalysisHandler) SaveAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageID string  `json:"image_id"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Text    string  `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ImageID == "" || payload.Text == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "image_id and text are required")
		return
	}

	now := time.Now()
	annotation := models.AnnotationRecord{
		ID:        models.AnnotationID(now),
		X:         payload.X,
		Y:         payload.Y,
		Text:      payload.Text,
		Timestamp: now.Format(time.RFC3339),
	}
	h.Annotations.Add(user.Username, payload.ImageID, &annotation)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"annotation": annotation,
	})
}

// ListAnnotations handles GET /api/annotations. With an image_id query
// parameter it returns that image's annotations; without one it returns all
// annotations grouped by image id.
func (h *AnalysisHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	imageID := r.URL.Query().Get("image_id")
	if imageID != "" {
		annotations := h.Annotations.ListByImage(user.Username, imageID)
		if annotations == nil {
			annotations = []models.AnnotationRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"annotations": annotations,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"all_annotations": h.Annotations.ListAll(user.Username),
	})
}

// DeleteAnnotation handles DELETE /api/annotations.
func (h *AnalysisHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageID      string `json:"image_id"`
		AnnotationID string `json:"annotation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ImageID == "" || payload.AnnotationID == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "image_id and annotation_id are required")
		return
	}

	if err := h.Annotations.Delete(user.Username, payload.ImageID, payload.AnnotationID); err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Annotation not found")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to delete annotation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
