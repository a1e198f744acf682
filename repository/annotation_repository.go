package repository

import (
	"sync"

	"github.com/saniya177/satellisense-backend/models"
)

// MemoryAnnotationRepository keeps point annotations per (owner, image id).
// Same ownership pattern as the analysis store, same in-memory lifetime.
type MemoryAnnotationRepository struct {
	mu      sync.RWMutex
	byOwner map[string]map[string][]models.AnnotationRecord
}

func NewMemoryAnnotationRepository() *MemoryAnnotationRepository {
	return &MemoryAnnotationRepository{byOwner: make(map[string]map[string][]models.AnnotationRecord)}
}

func (r *MemoryAnnotationRepository) Add(owner, imageID string, annotation *models.AnnotationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byOwner[owner] == nil {
		r.byOwner[owner] = make(map[string][]models.AnnotationRecord)
	}
	r.byOwner[owner][imageID] = append(r.byOwner[owner][imageID], *annotation)
}

func (r *MemoryAnnotationRepository) ListByImage(owner, imageID string) []models.AnnotationRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	annotations := r.byOwner[owner][imageID]
	out := make([]models.AnnotationRecord, len(annotations))
	copy(out, annotations)
	return out
}

func (r *MemoryAnnotationRepository) ListAll(owner string) map[string][]models.AnnotationRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]models.AnnotationRecord, len(r.byOwner[owner]))
	for imageID, annotations := range r.byOwner[owner] {
		copied := make([]models.AnnotationRecord, len(annotations))
		copy(copied, annotations)
		out[imageID] = copied
	}
	return out
}

// Delete removes the annotation with the given id from the image's
// collection. Returns ErrAnnotationNotFound if the image has no annotations
// for this owner.
func (r *MemoryAnnotationRepository) Delete(owner, imageID, annotationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	annotations, ok := r.byOwner[owner][imageID]
	if !ok {
		return ErrAnnotationNotFound
	}
	kept := annotations[:0]
	for _, ann := range annotations {
		if ann.ID != annotationID {
			kept = append(kept, ann)
		}
	}
	r.byOwner[owner][imageID] = kept
	return nil
}
