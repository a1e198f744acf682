package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/saniya177/satellisense-backend/media"
)

// Preprocess handles POST /api/preprocess: applies an enhancement filter to
// a stored image and returns the URL of the processed copy.
func (h *AnalysisHandler) Preprocess(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		ImageID          string  `json:"image_id"`
		FilterType       string  `json:"filter_type"`
		EnhancementLevel float64 `json:"enhancement_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload")
		return
	}
	if payload.FilterType == "" {
		payload.FilterType = "sharpen"
	}
	if payload.EnhancementLevel == 0 {
		payload.EnhancementLevel = 1.0
	}

	imagePath, found := h.locateImage(user.Username, payload.ImageID)
	if !found {
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Image not found")
		return
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to load image")
		return
	}
	filtered := media.ApplyFilter(img, payload.FilterType, payload.EnhancementLevel)

	storedName := fmt.Sprintf("processed_%d_%s", time.Now().Unix(), filepath.Base(imagePath))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, filtered, outputFormat(storedName)); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to encode processed image")
		return
	}
	if _, err := h.Uploads.SaveDerived(storedName, &buf); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to save processed image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"processed_image_url": h.Uploads.PublicURL(storedName),
	})
}

// outputFormat picks the encoder matching the processed file's extension,
// falling back to PNG for anything unrecognized.
func outputFormat(filename string) imaging.Format {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return imaging.PNG
	}
	return format
}
