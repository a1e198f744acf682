package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/saniya177/satellisense-backend/gemini"
	"github.com/saniya177/satellisense-backend/media"
	"github.com/saniya177/satellisense-backend/session"
)

// Chat handles POST /api/chat: a follow-up question about the session's
// current image. Requires a prior successful analysis in the same session.
func (h *AnalysisHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	bundle, err := h.Sessions.Current(user.Username)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeNoActiveImage, "No analyzed image found.")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, "Empty message.")
		return
	}

	imagePath, found := h.Uploads.ResolveRecord(bundle.ImagePath, bundle.ImageURL)
	if !found {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Could not load image for chat.")
		return
	}
	inline, err := media.EncodeInline(imagePath, h.Cfg.MaxInlineDim, h.Cfg.InlineQuality)
	if err != nil {
		log.Printf("ERROR: chat image encode failed: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Could not load image for chat.")
		return
	}

	reply, err := h.Inference.Generate(r.Context(), gemini.Request{
		Instruction: payload.Message,
		System:      gemini.ChatSystem,
		Parts:       gemini.ImageParts(inline),
	})
	if err != nil {
		writeInferenceError(w, "chat", err)
		return
	}

	if err := h.Sessions.AppendChatTurn(user.Username, payload.Message, reply); err != nil {
		if errors.Is(err, session.ErrNoActiveImage) {
			WriteAPIError(w, http.StatusBadRequest, CodeNoActiveImage, "No analyzed image found.")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to record chat turn")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": reply,
	})
}

// ChartData handles GET /api/chart-data: the current session's derived
// category counts.
func (h *AnalysisHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}

	bundle, err := h.Sessions.Current(user.Username)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeNoActiveImage, "No data found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"chart_data": bundle.ChartData,
	})
}
