package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ad-reporting/internal/models"
)

// LoadFunc reads a report table from its source.
type LoadFunc func(ctx context.Context, report models.ReportType) (*models.Table, error)

// CacheObserver is notified of cache lookups.
type CacheObserver interface {
	CacheHit(report models.ReportType)
	CacheMiss(report models.ReportType)
}

// MemoryStore caches loaded tables per report type for the lifetime of the
// process. Entries are populated lazily and never invalidated; the sources
// are treated as immutable while the process runs.
type MemoryStore struct {
	mu       sync.RWMutex
	tables   map[models.ReportType]*models.Table
	group    singleflight.Group
	load     LoadFunc
	observer CacheObserver
}

func NewMemoryStore(load LoadFunc, observer CacheObserver) *MemoryStore {
	return &MemoryStore{
		tables:   make(map[models.ReportType]*models.Table),
		load:     load,
		observer: observer,
	}
}

// Get returns the cached table for report, loading it on first use.
// Concurrent first requests for the same report share a single load.
func (s *MemoryStore) Get(ctx context.Context, report models.ReportType) (*models.Table, error) {
	if t, ok := s.lookup(report); ok {
		s.hit(report)
		return t, nil
	}
	s.miss(report)

	v, err, _ := s.group.Do(string(report), func() (interface{}, error) {
		if t, ok := s.lookup(report); ok {
			return t, nil
		}
		t, err := s.load(ctx, report)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tables[report] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Table), nil
}

// Preload loads every given report, stopping at the first failure.
func (s *MemoryStore) Preload(ctx context.Context, reports ...models.ReportType) error {
	for _, report := range reports {
		if _, err := s.Get(ctx, report); err != nil {
			return fmt.Errorf("preload %s: %w", report, err)
		}
	}
	return nil
}

func (s *MemoryStore) lookup(report models.ReportType) (*models.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[report]
	return t, ok
}

// Has reports whether a table is already cached.
func (s *MemoryStore) Has(report models.ReportType) bool {
	_, ok := s.lookup(report)
	return ok
}

// Cached lists the cached report types with their load time.
func (s *MemoryStore) Cached() map[models.ReportType]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.ReportType]time.Time, len(s.tables))
	for k, t := range s.tables {
		out[k] = t.LoadedAt
	}
	return out
}

func (s *MemoryStore) hit(report models.ReportType) {
	if s.observer != nil {
		s.observer.CacheHit(report)
	}
}

func (s *MemoryStore) miss(report models.ReportType) {
	if s.observer != nil {
		s.observer.CacheMiss(report)
	}
}
