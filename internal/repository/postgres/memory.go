package postgres

import (
	"context"
	"sync"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// memoryCapacity bounds how many forecast runs are kept without a database
const memoryCapacity = 500

// MemoryRepository implements domain.ForecastRepository in process memory.
// It is used when no database is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs []domain.ForecastRun // oldest first
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// SaveForecastRun appends a run, evicting the oldest once full
func (r *MemoryRepository) SaveForecastRun(ctx context.Context, run domain.ForecastRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, run)
	if len(r.runs) > memoryCapacity {
		r.runs = append([]domain.ForecastRun(nil), r.runs[len(r.runs)-memoryCapacity:]...)
	}
	return nil
}

// ListForecastRuns returns the newest runs first. An empty kind matches all.
func (r *MemoryRepository) ListForecastRuns(ctx context.Context, kind domain.ForecastKind, limit int) ([]domain.ForecastRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []domain.ForecastRun{}
	for i := len(r.runs) - 1; i >= 0 && len(results) < limit; i-- {
		if kind == "" || r.runs[i].Kind == kind {
			results = append(results, r.runs[i])
		}
	}
	return results, nil
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}
