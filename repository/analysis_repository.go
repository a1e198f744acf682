package repository

import (
	"sync"

	"github.com/saniya177/satellisense-backend/models"
)

// MemoryAnalysisRepository keeps per-owner analysis records in insertion
// order. It is safe for concurrent use by request handlers; persistence is
// out of scope, so the process owns the only copy.
type MemoryAnalysisRepository struct {
	mu      sync.RWMutex
	byOwner map[string][]models.AnalysisRecord
}

func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{byOwner: make(map[string][]models.AnalysisRecord)}
}

// Append stores the record at the end of the owner's collection and returns
// its id. Ids are not checked for uniqueness: a collision produces two
// records sharing one id, and Find will only ever observe the first.
func (r *MemoryAnalysisRepository) Append(owner string, record *models.AnalysisRecord) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[owner] = append(r.byOwner[owner], *record)
	return record.ID
}

// List returns a copy of the owner's records in insertion order. Callers
// needing chronological guarantees must sort by Timestamp themselves.
func (r *MemoryAnalysisRepository) List(owner string) []models.AnalysisRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.byOwner[owner]
	out := make([]models.AnalysisRecord, len(records))
	copy(out, records)
	return out
}

// Find returns the first record with the given id in insertion order, or
// ErrRecordNotFound. The record's ImagePath is not checked for existence;
// callers fall back to URL-based path reconstruction when the file is gone.
func (r *MemoryAnalysisRepository) Find(owner, id string) (*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.byOwner[owner] {
		if r.byOwner[owner][i].ID == id {
			rec := r.byOwner[owner][i]
			return &rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

// Count returns the number of records stored for the owner.
func (r *MemoryAnalysisRepository) Count(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOwner[owner])
}
