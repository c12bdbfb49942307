package main

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

type watchHarness struct {
	clock *fakeClock
	store *memStore
	tr    *tracker.Tracker
	m     watchModel
}

func newWatchHarness(t *testing.T) *watchHarness {
	t.Helper()
	clock := newFakeClock()
	store := newMemStore()
	tr, err := tracker.New(context.Background(), questlog.KeyForQuest(questlog.CustomQuestID), store,
		tracker.WithClock(clock),
		tracker.WithScheduler(noopScheduler{}),
		tracker.WithLogger(log.New(io.Discard)),
		tracker.WithTitle("Deep work"),
	)
	require.NoError(t, err)
	require.NoError(t, tr.Start(context.Background()))
	t.Cleanup(tr.Close)

	return &watchHarness{
		clock: clock,
		store: store,
		tr:    tr,
		m:     newWatchModel(context.Background(), tr),
	}
}

func (h *watchHarness) send(msg tea.Msg) tea.Cmd {
	model, cmd := h.m.Update(msg)
	h.m = model.(watchModel)
	return cmd
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestWatchModel_TickRefreshes(t *testing.T) {
	h := newWatchHarness(t)

	h.clock.Advance(61 * time.Second)
	cmd := h.send(TickMsg(h.clock.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 61, h.m.elapsed)
	assert.Contains(t, h.m.View(), "00:01:01")
	assert.Contains(t, h.m.View(), "Deep work")
}

func TestWatchModel_SpaceTogglesPause(t *testing.T) {
	h := newWatchHarness(t)

	h.clock.Advance(10 * time.Second)
	h.send(key(" "))
	assert.Equal(t, questlog.TimerPaused, h.m.record.Status())
	assert.Equal(t, questlog.TimerPaused, h.tr.Status())

	h.clock.Advance(5 * time.Second)
	h.send(TickMsg(h.clock.Now()))
	assert.Equal(t, 10, h.m.elapsed)

	h.send(key(" "))
	assert.Equal(t, questlog.TimerRunning, h.m.record.Status())
	assert.Len(t, h.m.record.PauseHistory, 1)
}

func TestWatchModel_Complete(t *testing.T) {
	h := newWatchHarness(t)

	h.clock.Advance(7 * time.Second)
	cmd := h.send(key("c"))
	assert.True(t, isQuit(cmd))
	require.NotNil(t, h.m.completed)
	assert.Equal(t, 7, h.m.completed.TotalActiveSeconds)
	assert.Equal(t, "Deep work", h.m.record.Title)
	assert.Contains(t, h.m.View(), "Completed")

	_, ok, _ := h.store.Load(context.Background(), h.tr.Key())
	assert.False(t, ok)
}

func TestWatchModel_Cancel(t *testing.T) {
	h := newWatchHarness(t)

	cmd := h.send(key("x"))
	assert.True(t, isQuit(cmd))
	assert.True(t, h.m.cancelled)
	assert.Nil(t, h.m.completed)

	_, ok, _ := h.store.Load(context.Background(), h.tr.Key())
	assert.False(t, ok)
}

func TestWatchModel_QuitKeepsTimer(t *testing.T) {
	h := newWatchHarness(t)

	cmd := h.send(key("q"))
	assert.True(t, isQuit(cmd))
	assert.Nil(t, h.m.completed)
	assert.Equal(t, questlog.TimerRunning, h.tr.Status())

	_, ok, _ := h.store.Load(context.Background(), h.tr.Key())
	assert.True(t, ok)
}

func TestFormatStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No quest in progress", formatStatus(questlog.TimerRecord{}, 0))

	r := questlog.TimerRecord{StartTime: time.Now(), IsRunning: true}
	assert.Equal(t, "(untitled) · Running · 01:01:01 · 0 pause(s)", formatStatus(r, 3661))
}
