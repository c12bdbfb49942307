package questlog

import (
	"context"
	"time"
)

type TimerStatus uint8

const (
	TimerNotStarted TimerStatus = iota
	TimerRunning
	TimerPaused
)

func (s TimerStatus) String() string {
	switch s {
	case TimerNotStarted:
		return "Not Started"
	case TimerRunning:
		return "Running"
	case TimerPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

type (
	TimerKey     string
	CompletionID string
)

// CustomQuestID identifies the free-form activity that isn't backed by a quest.
const CustomQuestID = "custom"

// KeyForQuest derives the persistence key of the timer for a quest or activity.
func KeyForQuest(questID string) TimerKey {
	return TimerKey("timer_" + questID)
}

type PauseInterval struct {
	Start, End time.Time
}

func (p PauseInterval) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

type TimerRecord struct {
	Title string

	//
	StartTime             time.Time
	CurrentElapsedSeconds int
	IsRunning             bool
	PauseHistory          []PauseInterval
	LastPauseStart        time.Time
}

func (r TimerRecord) Status() TimerStatus {
	switch {
	case r.StartTime.IsZero():
		return TimerNotStarted
	case r.IsRunning:
		return TimerRunning
	case !r.LastPauseStart.IsZero():
		return TimerPaused
	default:
		// started, not running and no open pause: only reachable through a corrupt record
		return TimerPaused
	}
}

// Clone returns a copy that doesn't share PauseHistory.
func (r TimerRecord) Clone() TimerRecord {
	c := r
	if r.PauseHistory != nil {
		c.PauseHistory = make([]PauseInterval, len(r.PauseHistory))
		copy(c.PauseHistory, r.PauseHistory)
	}
	return c
}

type ExistingTimerRecord struct {
	ExistingRecord[TimerKey]
	TimerRecord
}

// CompletionRecord is the finalized timing of a session.
type CompletionRecord struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalActiveSeconds int
	PauseHistory       []PauseInterval
}

type QuestCompletionRecord struct {
	TimerKey TimerKey
	Title    string
	Review   string
	CompletionRecord
}

type ExistingCompletionRecord struct {
	ExistingRecord[CompletionID]
	QuestCompletionRecord
}

// TimerStore persists tracker state so a session survives restarts.
type TimerStore interface {
	Load(ctx context.Context, key TimerKey) (TimerRecord, bool, error)
	Save(ctx context.Context, key TimerKey, r TimerRecord) error
	Clear(ctx context.Context, key TimerKey) error
}

type TimerRepo interface {
	UpsertTimer(ctx context.Context, key TimerKey, r TimerRecord) (ExistingTimerRecord, error)
	GetTimer(ctx context.Context, key TimerKey) (ExistingTimerRecord, error)
	DeleteTimer(ctx context.Context, key TimerKey) (ExistingTimerRecord, error)
	GetTimerKeys(ctx context.Context) ([]TimerKey, error)
}

type CompletionRepo interface {
	InsertCompletion(ctx context.Context, c QuestCompletionRecord) (ExistingCompletionRecord, error)
	GetCompletion(ctx context.Context, id CompletionID) (ExistingCompletionRecord, error)
	GetCompletions(ctx context.Context, limit int) ([]ExistingCompletionRecord, error)
	GetCompletionsByTimerKey(ctx context.Context, key TimerKey, limit int) ([]ExistingCompletionRecord, error)
	DeleteCompletion(ctx context.Context, id CompletionID) (ExistingCompletionRecord, error)
}
