package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jfeuerstein/josh-space/internal/tiles"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func fresh() tiles.State {
	return tiles.State{Active: tiles.NoTile, Solved: make([]bool, 3), Focus: make([]int, 3)}
}

func TestCreateGetUpdate(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()

	id := s.Create(fresh())
	assert.Len(t, id, 36)

	st, err := s.Update(id, func(st tiles.State) tiles.State {
		st.LogoClicks = 3
		return st
	})
	require.NoError(t, err)
	assert.Equal(t, 3, st.LogoClicks)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LogoClicks)
}

func TestIDsAreDistinct(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()

	a, b := s.Create(fresh()), s.Create(fresh())
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())
}

func TestUnknownSession(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update("nope", func(st tiles.State) tiles.State { return st })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiry(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(10*time.Minute, 0, WithClock(c.now))
	defer s.Close()

	keep := s.Create(fresh())
	drop := s.Create(fresh())

	c.advance(6 * time.Minute)
	_, err := s.Get(keep)
	require.NoError(t, err)
	_, err = s.Update(keep, func(st tiles.State) tiles.State { return st })
	require.NoError(t, err)

	c.advance(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(drop)
	assert.ErrorIs(t, err, ErrNotFound)

	c.advance(11 * time.Minute)
	_, err = s.Get(keep)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMaxSessionsEvictsLeastRecentlySeen(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(time.Hour, 0, WithClock(c.now), WithMaxSessions(2))
	defer s.Close()

	a := s.Create(fresh())
	c.advance(time.Second)
	b := s.Create(fresh())
	c.advance(time.Second)
	_, err := s.Update(a, func(st tiles.State) tiles.State { return st })
	require.NoError(t, err)
	c.advance(time.Second)

	d := s.Create(fresh())
	assert.Equal(t, 2, s.Len())
	_, err = s.Get(b)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, id := range []string{a, d} {
		_, err = s.Get(id)
		assert.NoError(t, err)
	}
}

func TestMaxSessionsPrefersExpired(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(time.Minute, 0, WithClock(c.now), WithMaxSessions(3))
	defer s.Close()

	s.Create(fresh())
	s.Create(fresh())
	c.advance(2 * time.Minute)
	live := s.Create(fresh())

	s.Create(fresh())
	assert.Equal(t, 2, s.Len())
	_, err := s.Get(live)
	assert.NoError(t, err)
}

func TestSweeperStopsOnClose(t *testing.T) {
	c := &clock{t: time.Now()}
	s := NewStore(time.Millisecond, 5*time.Millisecond, WithClock(c.now))
	s.Create(fresh())
	c.advance(time.Second)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	s.Close()
	s.Close()
}

func TestConcurrentUpdatesSerialise(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()
	id := s.Create(fresh())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(id, func(st tiles.State) tiles.State {
				st.LogoClicks++
				return st
			})
		}()
	}
	wg.Wait()

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 50, st.LogoClicks)
}
