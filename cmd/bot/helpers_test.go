package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

var errStoreDown = errors.New("store down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// noopScheduler never fires. Elapsed time is read on demand in these tests.
type noopScheduler struct{}

func (noopScheduler) Every(time.Duration, func()) func() {
	return func() {}
}

// mockTimerStore implements both questlog.TimerStore and the key listing of questlog.TimerRepo.
type mockTimerStore struct {
	mu       sync.Mutex
	records  map[questlog.TimerKey]questlog.TimerRecord
	failSave bool
}

func newMockTimerStore() *mockTimerStore {
	return &mockTimerStore{records: make(map[questlog.TimerKey]questlog.TimerRecord)}
}

func (s *mockTimerStore) Load(_ context.Context, key questlog.TimerKey) (questlog.TimerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	return r.Clone(), ok, nil
}

func (s *mockTimerStore) Save(_ context.Context, key questlog.TimerKey, r questlog.TimerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStoreDown
	}
	s.records[key] = r.Clone()
	return nil
}

func (s *mockTimerStore) Clear(_ context.Context, key questlog.TimerKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *mockTimerStore) has(key questlog.TimerKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	return ok
}

func (s *mockTimerStore) UpsertTimer(context.Context, questlog.TimerKey, questlog.TimerRecord) (questlog.ExistingTimerRecord, error) {
	return questlog.ExistingTimerRecord{}, nil
}

func (s *mockTimerStore) GetTimer(context.Context, questlog.TimerKey) (questlog.ExistingTimerRecord, error) {
	return questlog.ExistingTimerRecord{}, nil
}

func (s *mockTimerStore) DeleteTimer(context.Context, questlog.TimerKey) (questlog.ExistingTimerRecord, error) {
	return questlog.ExistingTimerRecord{}, nil
}

func (s *mockTimerStore) GetTimerKeys(context.Context) ([]questlog.TimerKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]questlog.TimerKey, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	return keys, nil
}

type mockRecorder struct {
	mu        sync.Mutex
	recorded  []questlog.QuestCompletionRecord
	recordErr error
}

func (m *mockRecorder) Record(_ context.Context, _ string, c questlog.QuestCompletionRecord) (questlog.ExistingCompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, c)
	return questlog.ExistingCompletionRecord{
		ExistingRecord:        questlog.NewExistingRecord[questlog.CompletionID]("c-1"),
		QuestCompletionRecord: c,
	}, m.recordErr
}

func (m *mockRecorder) HistoryFor(_ context.Context, key questlog.TimerKey, _ int) ([]questlog.ExistingCompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []questlog.ExistingCompletionRecord
	for _, c := range m.recorded {
		if c.TimerKey == key {
			out = append(out, questlog.ExistingCompletionRecord{QuestCompletionRecord: c})
		}
	}
	return out, nil
}

type managerHarness struct {
	mgr      *questManager
	store    *mockTimerStore
	recorder *mockRecorder
	clock    *fakeClock
}

func newManagerHarness() managerHarness {
	store := newMockTimerStore()
	recorder := &mockRecorder{}
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	mgr := NewQuestManager(store, store, recorder, log.New(io.Discard),
		tracker.WithClock(clock),
		tracker.WithScheduler(noopScheduler{}),
	)
	return managerHarness{mgr: mgr, store: store, recorder: recorder, clock: clock}
}
