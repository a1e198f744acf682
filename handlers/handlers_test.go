package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saniya177/satellisense-backend/charts"
	"github.com/saniya177/satellisense-backend/config"
	"github.com/saniya177/satellisense-backend/gemini"
	"github.com/saniya177/satellisense-backend/media"
	"github.com/saniya177/satellisense-backend/models"
	"github.com/saniya177/satellisense-backend/repository"
	"github.com/saniya177/satellisense-backend/session"
)

// fakeInference records calls and returns a canned answer.
type fakeInference struct {
	calls    int
	lastReq  gemini.Request
	response string
	err      error
}

func (f *fakeInference) Generate(_ context.Context, req gemini.Request) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	if f.response == "" {
		return "canned analysis", nil
	}
	return f.response, nil
}

func newTestHandler(t *testing.T, fake *fakeInference) *AnalysisHandler {
	t.Helper()
	uploads, err := media.NewUploadStore(t.TempDir(), "http://localhost:8080", "/api/uploads")
	if err != nil {
		t.Fatalf("NewUploadStore: %v", err)
	}
	return &AnalysisHandler{
		Cfg: config.Config{
			MaxUploadBytes: 25 << 20,
			MaxInlineDim:   256,
			InlineQuality:  85,
		},
		Records:     repository.NewMemoryAnalysisRepository(),
		Uploads:     uploads,
		Charts:      charts.NewRenderer(t.TempDir()),
		Inference:   fake,
		Sessions:    session.NewStore(),
		Annotations: repository.NewMemoryAnnotationRepository(),
	}
}

// pngBytes encodes a tiny valid PNG for upload fixtures.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(30 * x), G: uint8(30 * y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
	return buf.Bytes()
}

// seedRecord stores an on-disk image and an analysis record for it.
func seedRecord(t *testing.T, h *AnalysisHandler, owner, area string, at time.Time, filename string) *models.AnalysisRecord {
	t.Helper()
	path, storedName, err := h.Uploads.Save(owner, filename, bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatalf("seeding upload: %v", err)
	}
	record := &models.AnalysisRecord{
		ID:        models.AnalysisID(owner, at),
		Timestamp: at.Format(time.RFC3339),
		Area:      area,
		ImageURL:  h.Uploads.PublicURL(storedName),
		ImagePath: path,
		Insights:  "Water near the Forest",
	}
	h.Records.Append(owner, record)
	return record
}

// sessionBundleFor mirrors what a successful analysis places in the session.
func sessionBundleFor(record *models.AnalysisRecord) session.Bundle {
	return session.Bundle{
		ImagePath: record.ImagePath,
		ImageURL:  record.ImageURL,
		Area:      record.Area,
		Insights:  record.Insights,
		ChartData: map[string]int{"Water": 1, "Forest": 1},
	}
}

// authedRequest builds a request carrying an authenticated test user.
func authedRequest(method, target string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	user := &models.User{ID: 1, Username: "alice"}
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp APIErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if len(resp.Errors) == 0 {
		t.Fatal("error response carries no errors")
	}
	return resp.Errors[0].Code
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return data
}

func jsonReader(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	return bytes.NewReader(mustJSON(t, v))
}
