package models

import (
	"fmt"
	"time"
)

// AnalysisRecord is one completed image interpretation for one user.
// Records live in process memory only; ImagePath is the authoritative
// locator for the underlying file, ImageURL a best-effort display locator
// whose trailing filename must name a file inside the managed upload
// directory.
type AnalysisRecord struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"` // ISO-8601 creation instant
	Area       string  `json:"area"`
	ImageURL   string  `json:"image_url"`
	ImagePath  string  `json:"image_path"`
	Insights   string  `json:"insights"`
	CapturedAt *string `json:"captured_at,omitempty"` // EXIF capture time, when present
}

// AnalysisID builds the record identifier for an owner at a given instant.
// The format is {username}_{unix_seconds} and is deliberately NOT unique by
// construction: two records created by the same user within one second
// collide, and lookups resolve to the first inserted record.
func AnalysisID(owner string, at time.Time) string {
	return fmt.Sprintf("%s_%d", owner, at.Unix())
}

// AnnotationRecord is a point annotation on an analyzed image, owned by
// (username, image id). Coordinates are caller-supplied image-space values
// and are stored unvalidated.
type AnnotationRecord struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
}

// AnnotationID builds an annotation identifier (ann_{unix_seconds}).
func AnnotationID(at time.Time) string {
	return fmt.Sprintf("ann_%d", at.Unix())
}

// ChatTurn is a single question/answer pair in a session's chat history.
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
