package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saniya177/satellisense-backend/media"
)

// Request is one multimodal generation request: an instruction, an optional
// system directive steering the response framing, and zero or more inline
// parts. Parts keep caller order; the instruction text always leads.
type Request struct {
	Instruction string
	System      string
	Parts       []Part
}

// Part is either an inline image or an interleaved text fragment (used by
// time-series requests to label each image with its timestamp).
type Part struct {
	Text  string
	Image *media.InlineImage
}

// ImageParts wraps inline images as request parts in order.
func ImageParts(images ...media.InlineImage) []Part {
	parts := make([]Part, 0, len(images))
	for i := range images {
		parts = append(parts, Part{Image: &images[i]})
	}
	return parts
}

// TransportError reports a failed outbound call: network error, timeout, or
// a non-2xx status from the service.
type TransportError struct {
	Detail string
}

func (e *TransportError) Error() string {
	return "gemini: request failed: " + e.Detail
}

// MalformedResponseError reports a 2xx response whose envelope is missing
// the answer at candidates[0].content.parts[0].text.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return "gemini: malformed response: " + e.Detail
}

// Client is the inference boundary handlers depend on.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HTTPClient calls the generateContent REST endpoint directly. Calls are not
// retried; a single failure surfaces to the caller.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// NewHTTPClient builds a client with the fixed upstream timeout.
func NewHTTPClient(apiKey, model, baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inlineData,omitempty"`
}

type wireInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wireRequest struct {
	Contents          []wireContent   `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig"`
	SystemInstruction *wireSystemPart `json:"systemInstruction,omitempty"`
}

type wireSystemPart struct {
	Parts []wirePart `json:"parts"`
}

// Generate sends one user turn (instruction text first, then the parts in
// order) and extracts the answer text from the response envelope.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", &TransportError{Detail: "missing Gemini API key (set GEMINI_API_KEY)"}
	}

	parts := []wirePart{{Text: req.Instruction}}
	for _, p := range req.Parts {
		if p.Image != nil {
			parts = append(parts, wirePart{InlineData: &wireInlineData{MIMEType: p.Image.MIMEType, Data: p.Image.Data}})
		} else if p.Text != "" {
			parts = append(parts, wirePart{Text: p.Text})
		}
	}

	body := wireRequest{
		Contents:         []wireContent{{Role: "user", Parts: parts}},
		GenerationConfig: map[string]any{"temperature": 0.2},
	}
	if req.System != "" {
		body.SystemInstruction = &wireSystemPart{Parts: []wirePart{{Text: req.System}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", &TransportError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &TransportError{Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw))}
	}

	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &MalformedResponseError{Detail: err.Error()}
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", &MalformedResponseError{Detail: "no candidates/parts in response"}
	}
	text := envelope.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &MalformedResponseError{Detail: "empty text in first part"}
	}
	return text, nil
}
