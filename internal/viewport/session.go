package viewport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/geo"
	"github.com/Nixie-Tech-LLC/minaarly/internal/metrics"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const (
	DefaultQuietPeriod = 300 * time.Millisecond
	DefaultFetchLimit  = 100
)

// ErrLoadFailed is the generic error surfaced to clients when a fetch fails.
var ErrLoadFailed = errors.New("failed to load mosques")

// Fetcher runs one spatial range query.
type Fetcher interface {
	MosquesInBounds(ctx context.Context, bounds model.BoundingBox, limit int) ([]model.Mosque, error)
}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// Update is delivered to the session's listener on every state change.
type Update struct {
	State      State
	Generation uint64
	Bounds     model.BoundingBox
	Added      []model.Mosque
	Total      int
	Err        error
}

type Config struct {
	QuietPeriod time.Duration
	FetchLimit  int
}

// Session is the viewport loader for one open map page. It owns the set of
// loaded mosque IDs and discards it on Close.
type Session struct {
	fetcher Fetcher
	limit   int
	notify  func(Update)

	ctx    context.Context
	cancel context.CancelFunc

	debouncer *Debouncer[model.BoundingBox]
	inflight  sync.WaitGroup

	mu         sync.Mutex
	acc        *Accumulator
	state      State
	generation uint64
	selected   *model.Mosque
	closed     bool

	// updates waiting for notify; flushing is set while one goroutine drains
	outbox   []Update
	flushing bool
}

// NewSession builds a session. notify receives updates one at a time and in
// order, outside the session lock, so a slow listener never blocks Select or
// a newer dispatch. Updates still queued when the session closes are dropped.
func NewSession(ctx context.Context, fetcher Fetcher, cfg Config, notify func(Update)) *Session {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = DefaultQuietPeriod
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if notify == nil {
		notify = func(Update) {}
	}
	s := &Session{
		fetcher: fetcher,
		limit:   cfg.FetchLimit,
		notify:  notify,
		acc:     NewAccumulator(),
		state:   StateIdle,
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.debouncer = NewDebouncer(cfg.QuietPeriod, s.dispatch)
	metrics.LiveSessions.Inc()
	return s
}

// Track records a new viewport. The fetch runs once the viewport has been
// quiet for the configured period.
func (s *Session) Track(bounds model.BoundingBox) error {
	if err := geo.Validate(bounds); err != nil {
		return err
	}
	s.debouncer.Trigger(bounds)
	return nil
}

func (s *Session) dispatch(bounds model.BoundingBox) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.state = StateLoading
	s.inflight.Add(1)
	s.emit(Update{State: StateLoading, Generation: gen, Bounds: bounds, Total: s.acc.Len()})
	s.mu.Unlock()

	defer s.inflight.Done()
	s.flush()
	metrics.ViewportFetchesTotal.Inc()

	batch, err := s.fetcher.MosquesInBounds(s.ctx, bounds, s.limit)

	s.mu.Lock()
	s.settle(gen, bounds, batch, err)
	s.mu.Unlock()
	s.flush()
}

// settle applies a fetch result. Called with s.mu held.
func (s *Session) settle(gen uint64, bounds model.BoundingBox, batch []model.Mosque, err error) {
	if s.closed {
		return
	}
	if gen != s.generation {
		metrics.ViewportStaleTotal.Inc()
		log.Debug().Uint64("generation", gen).Uint64("latest", s.generation).Msg("discarding stale viewport response")
		return
	}
	if err != nil {
		metrics.ViewportFetchErrorsTotal.Inc()
		log.Error().Err(err).Uint64("generation", gen).Msg("viewport fetch failed")
		s.state = StateError
		s.emit(Update{State: StateError, Generation: gen, Bounds: bounds, Total: s.acc.Len(), Err: ErrLoadFailed})
		return
	}

	added := s.acc.Merge(batch)
	s.state = StateLoaded
	s.emit(Update{State: StateLoaded, Generation: gen, Bounds: bounds, Added: added, Total: s.acc.Len()})
}

// emit queues u for delivery. Called with s.mu held.
func (s *Session) emit(u Update) {
	s.outbox = append(s.outbox, u)
}

// flush delivers queued updates unless another goroutine is already doing
// so, in which case that goroutine picks them up.
func (s *Session) flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	for len(s.outbox) > 0 && !s.closed {
		u := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()
		s.notify(u)
		s.mu.Lock()
	}
	s.outbox = nil
	s.flushing = false
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mosques returns every mosque loaded so far, in arrival order.
func (s *Session) Mosques() []model.Mosque {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Mosques()
}

// Select marks a loaded mosque as the current selection, replacing any
// previous one.
func (s *Session) Select(id string) (model.Mosque, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.acc.Get(id)
	if !ok {
		return model.Mosque{}, false
	}
	s.selected = &m
	return m, true
}

// SelectRecord sets the selection to a record obtained outside the
// accumulated list.
func (s *Session) SelectRecord(m model.Mosque) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &m
}

func (s *Session) Selected() (model.Mosque, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return model.Mosque{}, false
	}
	return *s.selected, true
}

func (s *Session) Dismiss() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Close cancels the pending debounce, abandons any in-flight fetch and waits
// for it to return. Safe to call more than once.
func (s *Session) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.selected = nil
	s.outbox = nil
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
	metrics.LiveSessions.Dec()
}
