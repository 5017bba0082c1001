// Package session keeps one interaction state per page load.
//
// A page load mints a session; every HTMX request from that page carries the
// id back. Sessions are never written to disk and are dropped after sitting
// idle for the store's TTL.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jfeuerstein/josh-space/internal/tiles"
)

var ErrNotFound = errors.New("session: not found")

type entry struct {
	state tiles.State
	seen  time.Time
}

// Store is safe for concurrent use.
type Store struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxSessions caps how many sessions are held at once. At the cap,
// Create drops expired sessions and then the one idle the longest. Zero or
// less means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Store) { s.max = n }
}

// NewStore returns a store that forgets sessions idle for longer than ttl.
// When sweepEvery is positive a background goroutine evicts them on that
// interval until Close is called.
func NewStore(ttl, sweepEvery time.Duration, opts ...Option) *Store {
	s := &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	} else {
		close(s.done)
	}
	return s
}

// Create stores st under a new id and returns the id.
func (s *Store) Create(st tiles.State) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		s.sweepLocked()
		for len(s.sessions) >= s.max {
			s.evictOldest()
		}
	}
	s.sessions[id] = &entry{state: st, seen: s.now()}
	return id
}

func (s *Store) evictOldest() {
	var (
		oldest string
		seen   time.Time
	)
	for id, e := range s.sessions {
		if oldest == "" || e.seen.Before(seen) {
			oldest, seen = id, e.seen
		}
	}
	delete(s.sessions, oldest)
}

// Get returns the state for id.
func (s *Store) Get(id string) (tiles.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return tiles.State{}, ErrNotFound
	}
	return e.state, nil
}

// Update replaces the state for id with fn's result. fn runs under the store
// lock, so concurrent requests from one page are applied one at a time.
func (s *Store) Update(id string, fn func(tiles.State) tiles.State) (tiles.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return tiles.State{}, ErrNotFound
	}
	e.state = fn(e.state)
	e.seen = s.now()
	return e.state, nil
}

func (s *Store) live(id string) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.seen) > s.ttl
}

// Len is the number of sessions held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) sweepLocked() int {
	n := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) sweepLoop(every time.Duration) {
	defer close(s.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the sweeper and waits for it to exit.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
