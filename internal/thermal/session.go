package thermal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/banshee-data/thermal.report/internal/monitoring"
)

// Session owns one dataset, its module configuration and the active layout.
// The active layout is swapped atomically; frame computation and the time
// index are serialised by mu.
type Session struct {
	ID string

	ds    *Dataset
	cfg   ModuleConfig
	store *LayoutStore

	active atomic.Pointer[ResolvedLayout]

	mu sync.Mutex
	t  int
}

// NewSession validates cfg and starts with an empty layout. store may be nil
// when layouts are only installed with UseLayout.
func NewSession(ds *Dataset, cfg ModuleConfig, store *LayoutStore) (*Session, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", ErrShapeMismatch)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ds.Matrix.Rows() != len(ds.Records) {
		return nil, fmt.Errorf("%w: matrix has %d rows for %d sensor records", ErrShapeMismatch, ds.Matrix.Rows(), len(ds.Records))
	}
	s := &Session{
		ID:    uuid.NewString(),
		ds:    ds,
		cfg:   ModuleConfig{ModulesPerLayer: append([]int(nil), cfg.ModulesPerLayer...)},
		store: store,
	}
	s.active.Store(ResolveLayout("", nil, ds, s.cfg))
	return s, nil
}

// Dataset returns the session's dataset.
func (s *Session) Dataset() *Dataset { return s.ds }

// Config returns the module configuration.
func (s *Session) Config() ModuleConfig { return s.cfg }

// Store returns the layout store, which may be nil.
func (s *Session) Store() *LayoutStore { return s.store }

// Layout returns the active resolved layout.
func (s *Session) Layout() *ResolvedLayout { return s.active.Load() }

// UseLayout resolves order and makes it the active layout.
func (s *Session) UseLayout(name string, order LayoutOrder) *ResolvedLayout {
	rl := ResolveLayout(name, order, s.ds, s.cfg)
	s.active.Store(rl)
	monitoring.Logf("session %s: layout %q active (%d entries)", s.ID, name, len(order))
	for _, w := range rl.Warnings {
		monitoring.Logf("session %s: layout %q: %s", s.ID, name, w)
	}
	return rl
}

// SetLayout loads the named layout from the store and activates it. On
// failure the previous layout stays active; the returned layout is whichever
// one is active afterwards, along with the load error.
func (s *Session) SetLayout(name string) (*ResolvedLayout, error) {
	if s.store == nil {
		err := fmt.Errorf("%w: %q (no layout store)", ErrLayoutNotFound, name)
		monitoring.Logf("session %s: %v; keeping layout %q", s.ID, err, s.Layout().Name)
		return s.Layout(), err
	}
	order, err := s.store.Load(name)
	if err != nil {
		monitoring.Logf("session %s: failed to load layout %q: %v; keeping layout %q", s.ID, name, err, s.Layout().Name)
		return s.Layout(), err
	}
	return s.UseLayout(name, order), nil
}

// Len is the number of time indices.
func (s *Session) Len() int { return s.ds.Len() }

// TimeIndex returns the current time index.
func (s *Session) TimeIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

// Frame computes time index t (clamped) against the active layout without
// moving the current time index.
func (s *Session) Frame(t int) FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked(t)
}

// Current computes the frame at the current time index.
func (s *Session) Current() FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked(s.t)
}

// Seek moves to time index t, clamped, and returns its frame.
func (s *Session) Seek(t int) FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = ClampTimeIndex(t, s.ds.Len())
	return s.frameLocked(s.t)
}

// Step moves the time index by delta, clamped, and returns its frame.
func (s *Session) Step(delta int) FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = ClampTimeIndex(s.t+delta, s.ds.Len())
	return s.frameLocked(s.t)
}

// Advance moves forward one time index, wrapping to 0 after the last one.
func (s *Session) Advance() FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.ds.Len(); n > 0 {
		s.t = (s.t + 1) % n
	}
	return s.frameLocked(s.t)
}

// frameLocked loads the active layout once so a concurrent swap never mixes
// two layouts in one frame. Caller holds mu.
func (s *Session) frameLocked(t int) FrameResult {
	return s.active.Load().Frame(s.ds, s.cfg, t)
}
