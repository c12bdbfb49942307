package questlog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerRecord_Status(t *testing.T) {
	t.Parallel()

	start := time.UnixMilli(1_700_000_000_000)
	tests := []struct {
		name string
		r    TimerRecord
		want TimerStatus
	}{
		{"zero", TimerRecord{}, TimerNotStarted},
		{"running", TimerRecord{StartTime: start, IsRunning: true}, TimerRunning},
		{"paused", TimerRecord{StartTime: start, LastPauseStart: start.Add(time.Second)}, TimerPaused},
		{"stopped without pause start", TimerRecord{StartTime: start}, TimerPaused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Status())
		})
	}
}

func TestTimerRecord_Clone(t *testing.T) {
	t.Parallel()

	start := time.UnixMilli(1_700_000_000_000)
	r := TimerRecord{PauseHistory: []PauseInterval{{Start: start, End: start.Add(time.Second)}}}
	c := r.Clone()
	c.PauseHistory[0].End = start.Add(time.Hour)

	assert.Equal(t, time.Second, r.PauseHistory[0].Duration())
	assert.Nil(t, TimerRecord{}.Clone().PauseHistory)
}

func TestKeyForQuest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TimerKey("timer_custom"), KeyForQuest(CustomQuestID))
	assert.Equal(t, TimerKey("timer_q-1"), KeyForQuest("q-1"))
}

func TestNewPersistenceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := NewPersistenceError("pause", "timer_custom", cause)

	assert.ErrorIs(t, err, ErrPersistenceWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "pause timer timer_custom: disk full", err.Error())
	assert.NoError(t, NewPersistenceError("pause", "timer_custom", nil))

	var opErr *OpError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, "pause", opErr.Op)
}
