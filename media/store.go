package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrUnsupportedType is returned when an uploaded filename does not carry an
// allowed imagery extension.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// IsAllowedImage checks if the filename has an accepted satellite imagery
// extension. The check is case-insensitive.
func IsAllowedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions[ext]
}

// SanitizeFilename strips any directory components and replaces characters
// outside [A-Za-z0-9._-] so the result is safe to join into the upload
// directory.
func SanitizeFilename(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.Trim(base, "._")
	return base
}

// UploadStore persists uploaded imagery under a single managed directory and
// projects public URLs for stored files. Storage names carry the owner and
// the upload instant ({owner}_{unix}_{sanitized}) to reduce cross-user
// collisions; same-owner collisions within one second remain possible and
// the last write wins.
type UploadStore struct {
	basePath      string // absolute path to the managed upload directory
	publicBaseURL string // e.g. http://localhost:8080
	urlPrefix     string // e.g. /api/uploads
}

// NewUploadStore creates the managed upload directory if needed.
func NewUploadStore(basePath, publicBaseURL, urlPrefix string) (*UploadStore, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid upload path '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(absBase, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", absBase, err)
	}
	log.Printf("media.store: Initialized upload store at %s", absBase)
	return &UploadStore{
		basePath:      absBase,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		urlPrefix:     "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// BasePath returns the absolute managed upload directory.
func (s *UploadStore) BasePath() string { return s.basePath }

// Save validates, sanitizes and writes an uploaded file. It returns the
// absolute path for internal use and the stored filename the public URL is
// built from.
func (s *UploadStore) Save(owner, declaredFilename string, data io.Reader) (path, storedName string, err error) {
	sanitized := SanitizeFilename(declaredFilename)
	if sanitized == "" || !IsAllowedImage(sanitized) {
		return "", "", ErrUnsupportedType
	}

	storedName = fmt.Sprintf("%s_%d_%s", owner, time.Now().Unix(), sanitized)
	fullPath := filepath.Join(s.basePath, storedName)
	if !strings.HasPrefix(filepath.Clean(fullPath), s.basePath) {
		return "", "", fmt.Errorf("invalid storage name '%s'", storedName)
	}

	outFile, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file '%s': %w", fullPath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullPath)
		return "", "", fmt.Errorf("failed to write upload to '%s': %w", fullPath, err)
	}

	return fullPath, storedName, nil
}

// SaveDerived writes an already-processed image under an explicit stored
// name (used by the preprocessing filters).
func (s *UploadStore) SaveDerived(storedName string, data io.Reader) (string, error) {
	fullPath := filepath.Join(s.basePath, SanitizeFilename(storedName))
	outFile, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create derived file '%s': %w", fullPath, err)
	}
	defer outFile.Close()
	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write derived file '%s': %w", fullPath, err)
	}
	return fullPath, nil
}

// PublicURL projects the externally reachable URL for a stored filename.
// The URL is a derived locator only; the stored path remains authoritative.
func (s *UploadStore) PublicURL(storedName string) string {
	return s.publicBaseURL + s.urlPrefix + "/" + storedName
}

// ResolveURL attempts to rediscover a stored file's path from a public URL
// whose host may no longer match the current base URL. The trailing path
// segment (query parameters stripped) is treated as a stable key into the
// managed directory; the reconstructed path is only returned when the file
// exists.
func (s *UploadStore) ResolveURL(imageURL string) (string, bool) {
	if imageURL == "" {
		return "", false
	}
	tail := imageURL
	if idx := strings.LastIndex(tail, "/"); idx >= 0 {
		tail = tail[idx+1:]
	}
	if idx := strings.Index(tail, "?"); idx >= 0 {
		tail = tail[:idx]
	}
	if tail == "" || strings.Contains(tail, "..") {
		return "", false
	}
	candidate := filepath.Join(s.basePath, tail)
	if !strings.HasPrefix(filepath.Clean(candidate), s.basePath) {
		return "", false
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", false
	}
	return candidate, true
}

// ResolveRecord locates image bytes for a stored record: the recorded path
// is tried first, then the URL-tail fallback.
func (s *UploadStore) ResolveRecord(imagePath, imageURL string) (string, bool) {
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			return imagePath, true
		}
	}
	return s.ResolveURL(imageURL)
}
