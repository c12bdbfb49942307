package tracker

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/charmbracelet/log"
)

var errStoreDown = errors.New("store down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// manualScheduler fires callbacks only when Tick is called.
type manualScheduler struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{fns: make(map[int]func())}
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *manualScheduler) Tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

type memStore struct {
	mu        sync.Mutex
	records   map[questlog.TimerKey]questlog.TimerRecord
	saves     int
	failSave  bool
	failClear bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[questlog.TimerKey]questlog.TimerRecord)}
}

func (s *memStore) Load(_ context.Context, key questlog.TimerKey) (questlog.TimerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	return r.Clone(), ok, nil
}

func (s *memStore) Save(_ context.Context, key questlog.TimerKey, r questlog.TimerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStoreDown
	}
	s.saves++
	s.records[key] = r.Clone()
	return nil
}

func (s *memStore) Clear(_ context.Context, key questlog.TimerKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failClear {
		return errStoreDown
	}
	delete(s.records, key)
	return nil
}

func (s *memStore) Get(key questlog.TimerKey) (questlog.TimerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	return r, ok
}

type harness struct {
	clock *fakeClock
	sched *manualScheduler
	store *memStore
	t0    time.Time
}

func newHarness() *harness {
	c := newFakeClock()
	return &harness{
		clock: c,
		sched: newManualScheduler(),
		store: newMemStore(),
		t0:    c.Now(),
	}
}

func (h *harness) tracker(key questlog.TimerKey, opts ...Option) (*Tracker, error) {
	opts = append([]Option{
		WithClock(h.clock),
		WithScheduler(h.sched),
		WithLogger(log.New(io.Discard)),
	}, opts...)
	return New(context.Background(), key, h.store, opts...)
}

// at moves the clock to t0+d.
func (h *harness) at(d time.Duration) {
	h.clock.mu.Lock()
	defer h.clock.mu.Unlock()
	h.clock.now = h.t0.Add(d)
}
