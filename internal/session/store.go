// internal/session/store.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/platable/insights-backend/internal/domain"
	"github.com/platable/insights-backend/internal/ingest"
	"github.com/platable/insights-backend/internal/pipeline"
)

// ErrNoDataset is returned by read operations before the first upload.
var ErrNoDataset = errors.New("no dataset loaded")

// Snapshot is a read view of the current dataset. The Orders slice is shared
// with the store and must not be mutated; aggregations only read it.
type Snapshot struct {
	Orders     []domain.Order
	Filename   string
	RawRows    int
	Unmapped   []string
	UploadedAt time.Time
	Revision   uint64
}

// Store holds the session-scoped state: the retained raw table, the
// normalized orders derived from it, and the active impact parameters.
// Uploads replace the dataset wholesale; there is no incremental merge.
type Store struct {
	mu       sync.RWMutex
	raw      *ingest.RawTable
	result   *pipeline.Result
	params   domain.ImpactParams
	filename string
	uploaded time.Time
	revision uint64
}

// NewStore creates an empty store with the given initial parameters.
func NewStore(params domain.ImpactParams) *Store {
	return &Store{params: params}
}

// Replace transforms the raw table with the current parameters and swaps it
// in as the session dataset. Returns the transform result for reporting.
func (s *Store) Replace(filename string, table *ingest.RawTable) *pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := pipeline.Transform(table, s.params)
	s.raw = table
	s.result = result
	s.filename = filename
	s.uploaded = time.Now()
	s.revision++
	return result
}

// Refresh re-runs the transform over the retained raw table with the
// current parameters. This is how a parameter change is applied to the
// already-loaded dataset.
func (s *Store) Refresh() (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw == nil {
		return nil, ErrNoDataset
	}
	result := pipeline.Transform(s.raw, s.params)
	s.result = result
	s.revision++
	return result, nil
}

// Snapshot returns a read view of the current dataset.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return Snapshot{}, ErrNoDataset
	}
	return Snapshot{
		Orders:     s.result.Orders,
		Filename:   s.filename,
		RawRows:    len(s.raw.Rows),
		Unmapped:   s.result.Unmapped,
		UploadedAt: s.uploaded,
		Revision:   s.revision,
	}, nil
}

// Params returns the active impact parameters.
func (s *Store) Params() domain.ImpactParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams stores new impact parameters. They take effect on the next
// Replace or Refresh, not retroactively.
func (s *Store) SetParams(p domain.ImpactParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}
