package gridio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tablescout/tablescout/config"
)

// Handle represents a cached, loaded grid paired with metadata for TTL
// eviction and for detecting content changes between requests.
type Handle struct {
	ID        string
	Path      string
	Sheet     string
	Grid      [][]string
	Version   int64
	LoadedAt  time.Time
	ExpiresAt time.Time
	mu        sync.RWMutex
}

// FileGate coordinates capacity for open file handles, backed by
// runtime.Controller.
type FileGate interface {
	AcquireFile(ctx context.Context) error
	ReleaseFile()
}

// PathValidator abstracts filesystem path validation. Implementations
// return a canonical absolute path when the request is allowed.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// ErrHandleNotFound indicates an unknown or expired handle ID.
var ErrHandleNotFound = errors.New("gridio: handle not found")

// Manager caches loaded grids behind TTL-bearing handles, bounding the
// number of concurrently open files via a FileGate.
type Manager struct {
	mu           sync.RWMutex
	handles      map[string]*Handle
	byPath       map[string]string // canonical path -> handle id
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         FileGate
	validator    PathValidator
	stopCh       chan struct{}
	cleanupWG    sync.WaitGroup
}

// NewManager constructs a TTL-bearing grid cache. ttl/cleanupEvery <= 0 use
// config defaults; gate may be nil for tests; clock defaults to time.Now.
func NewManager(ttl, cleanupEvery time.Duration, gate FileGate, validator PathValidator, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultFileIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultFileCleanupEvery
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		handles:      make(map[string]*Handle),
		byPath:       make(map[string]string),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		validator:    validator,
		stopCh:       make(chan struct{}),
	}
}

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and releases all cached handles.
func (m *Manager) Close(ctx context.Context) error {
	close(m.stopCh)
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.handles {
		delete(m.handles, id)
		m.release()
	}
	m.byPath = make(map[string]string)
	return nil
}

// GetOrOpenByPath returns the cached handle ID for path if a fresh one
// exists, otherwise validates, loads, and caches a new one. It returns the
// handle ID and the canonical path used to open the file.
func (m *Manager) GetOrOpenByPath(ctx context.Context, path, sheet string) (string, string, error) {
	canonical := path
	if m.validator != nil {
		c, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return "", "", err
		}
		canonical = c
	}

	key := canonical + "#" + sheet
	m.mu.RLock()
	if id, ok := m.byPath[key]; ok {
		if h, ok := m.handles[id]; ok && !h.Expired(m.clock()) {
			m.mu.RUnlock()
			m.touch(id)
			return id, canonical, nil
		}
	}
	m.mu.RUnlock()

	if err := m.acquire(ctx); err != nil {
		return "", "", err
	}

	grid, resolvedSheet, err := LoadGrid(canonical, sheet)
	if err != nil {
		m.release()
		return "", "", err
	}

	id := uuid.NewString()
	now := m.clock()
	h := &Handle{
		ID:        id,
		Path:      canonical,
		Sheet:     resolvedSheet,
		Grid:      grid,
		Version:   now.UnixNano(),
		LoadedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.handles[id] = h
	m.byPath[key] = id
	m.mu.Unlock()

	return id, canonical, nil
}

// Get returns the handle when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	m.touch(id)
	return h, true
}

func (m *Manager) touch(id string) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return
	}
	now := m.clock()
	h.mu.Lock()
	h.ExpiresAt = now.Add(m.ttl)
	h.mu.Unlock()
}

// WithGrid obtains a shared read lock for the handle's grid and invokes fn.
func (m *Manager) WithGrid(id string, fn func(grid [][]string, version int64) error) error {
	h, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(h.Grid, h.Version)
}

// CloseHandle evicts a handle by ID and releases its gate capacity.
func (m *Manager) CloseHandle(id string) error {
	m.mu.Lock()
	h, ok := m.handles[id]
	if ok {
		delete(m.handles, id)
		for k, v := range m.byPath {
			if v == id {
				delete(m.byPath, k)
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	_ = h
	m.release()
	return nil
}

// EvictExpired scans for and releases expired handles.
func (m *Manager) EvictExpired() {
	now := m.clock()
	var expiredIDs []string

	m.mu.RLock()
	for id, h := range m.handles {
		if h.Expired(now) {
			expiredIDs = append(expiredIDs, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expiredIDs {
		m.mu.Lock()
		if _, ok := m.handles[id]; ok {
			delete(m.handles, id)
			for k, v := range m.byPath {
				if v == id {
					delete(m.byPath, k)
				}
			}
			m.mu.Unlock()
			m.release()
			continue
		}
		m.mu.Unlock()
	}
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireFile(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseFile()
}

// Expired reports whether the handle has reached its TTL.
func (h *Handle) Expired(now time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return now.After(h.ExpiresAt)
}
