package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/questlog-go"
)

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

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type noopScheduler struct{}

func (noopScheduler) Every(time.Duration, func()) func() {
	return func() {}
}

type memStore struct {
	mu      sync.Mutex
	records map[questlog.TimerKey]questlog.TimerRecord
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
	s.records[key] = r.Clone()
	return nil
}

func (s *memStore) Clear(_ context.Context, key questlog.TimerKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// cli runs commands against one database file with a controllable clock.
type cli struct {
	t      *testing.T
	dbPath string
	clock  *fakeClock
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv(questlog.APIURLKey, "")
	t.Setenv(questlog.CharacterNameKey, "")
	t.Setenv(questlog.LogLevelKey, "")
	return &cli{
		t:      t,
		dbPath: filepath.Join(t.TempDir(), "questlog.db"),
		clock:  newFakeClock(),
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	app := &App{
		clock: c.clock,
		sched: noopScheduler{},
		l:     log.New(io.Discard),
	}
	cmd := newRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", c.dbPath}, args...))
	err := cmd.Execute()
	_ = app.close()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "questlog %v", args)
	return out
}
