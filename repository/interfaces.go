package repository

import (
	"errors"

	"github.com/saniya177/satellisense-backend/models"
)

// ErrRecordNotFound is returned when an analysis record lookup misses.
var ErrRecordNotFound = errors.New("analysis record not found")

// ErrAnnotationNotFound is returned when an annotation lookup or delete misses.
var ErrAnnotationNotFound = errors.New("annotation not found")

// AnalysisRepository defines the methods for analysis record operations.
// Records are append-only and scoped per owner. Append never deduplicates:
// a colliding id is stored alongside the existing record, and Find resolves
// the collision by returning the first record in insertion order.
type AnalysisRepository interface {
	Append(owner string, record *models.AnalysisRecord) string
	List(owner string) []models.AnalysisRecord
	Find(owner, id string) (*models.AnalysisRecord, error)
	Count(owner string) int
}

// AnnotationRepository defines the methods for point annotation operations,
// scoped per (owner, image id).
type AnnotationRepository interface {
	Add(owner, imageID string, annotation *models.AnnotationRecord)
	ListByImage(owner, imageID string) []models.AnnotationRecord
	ListAll(owner string) map[string][]models.AnnotationRecord
	Delete(owner, imageID, annotationID string) error
}

// UserRepository defines the methods for user account operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}
