package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/facette/natsort"
)

// ListUploads handles GET /api/uploads: the caller's stored files in natural
// sort order, so shot_2 sorts before shot_10.
func (h *AnalysisHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	entries, err := os.ReadDir(h.Uploads.BasePath())
	if err != nil {
		log.Printf("ERROR: listing uploads: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to list uploads")
		return
	}

	ownerPrefix := user.Username + "_"
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), ownerPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}
	natsort.Sort(names)

	uploads := make([]map[string]string, 0, len(names))
	for _, name := range names {
		uploads = append(uploads, map[string]string{
			"filename": name,
			"url":      h.Uploads.PublicURL(name),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"uploads": uploads,
		"count":   len(uploads),
	})
}
