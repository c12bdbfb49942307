package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

var (
	errQuestInProgress = errors.New("quest already in progress")
	errNoQuest         = errors.New("no quest in progress")
)

type CompletionRecorder interface {
	Record(ctx context.Context, questID string, c questlog.QuestCompletionRecord) (questlog.ExistingCompletionRecord, error)
	HistoryFor(ctx context.Context, key questlog.TimerKey, limit int) ([]questlog.ExistingCompletionRecord, error)
}

type QuestManager interface {
	StartQuest(ctx context.Context, key questKey, title string) (questlog.TimerRecord, error)
	PauseQuest(ctx context.Context, key questKey) (questlog.TimerRecord, error)
	ResumeQuest(ctx context.Context, key questKey) (questlog.TimerRecord, error)
	QuestStatus(key questKey) (questlog.TimerRecord, error)
	CompleteQuest(ctx context.Context, key questKey, review string) (questlog.ExistingCompletionRecord, error)
	CancelQuest(ctx context.Context, key questKey) error
	History(ctx context.Context, key questKey, limit int) ([]questlog.ExistingCompletionRecord, error)

	RestoreQuests(ctx context.Context) error
	Shutdown()
}

// questKey scopes a timer to one user in one guild.
type questKey struct {
	guildID, userID string
}

func (k questKey) String() string {
	return fmt.Sprintf("%s:%s", k.guildID, k.userID)
}

func (k questKey) validate() error {
	if k.guildID == "" || k.userID == "" {
		return fmt.Errorf("questKey requires guild and user IDs")
	}
	return nil
}

func (k questKey) timerKey() questlog.TimerKey {
	return questlog.KeyForQuest(k.String())
}

func questKeyFromTimerKey(tk questlog.TimerKey) (questKey, error) {
	id, ok := strings.CutPrefix(string(tk), string(questlog.KeyForQuest("")))
	if !ok {
		return questKey{}, fmt.Errorf("unexpected timer key: %s", tk)
	}
	guildID, userID, ok := strings.Cut(id, ":")
	k := questKey{guildID: guildID, userID: userID}
	if !ok || k.validate() != nil {
		return questKey{}, fmt.Errorf("unexpected timer key: %s", tk)
	}
	return k, nil
}

type questManager struct {
	store       questlog.TimerStore
	timers      questlog.TimerRepo
	recorder    CompletionRecorder
	trackerOpts []tracker.Option
	l           *log.Logger

	mu       sync.Mutex
	trackers map[questKey]*tracker.Tracker
}

func NewQuestManager(
	store questlog.TimerStore,
	timers questlog.TimerRepo,
	recorder CompletionRecorder,
	logger *log.Logger,
	trackerOpts ...tracker.Option,
) *questManager {
	return &questManager{
		store:       store,
		timers:      timers,
		recorder:    recorder,
		trackerOpts: append([]tracker.Option{tracker.WithLogger(logger)}, trackerOpts...),
		l:           logger,
		trackers:    make(map[questKey]*tracker.Tracker),
	}
}

var _ QuestManager = (*questManager)(nil)

// RestoreQuests loads every persisted timer. Running ones resume ticking.
func (m *questManager) RestoreQuests(ctx context.Context) error {
	keys, err := m.timers.GetTimerKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to get timer keys: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var restored int
	for _, tk := range keys {
		key, err := questKeyFromTimerKey(tk)
		if err != nil {
			m.l.Warn("skipping timer", "key", tk, "err", err)
			continue
		}
		if _, exists := m.trackers[key]; exists {
			continue
		}
		tr, err := tracker.New(ctx, tk, m.store, m.trackerOpts...)
		if err != nil {
			return fmt.Errorf("failed to restore quest %s: %w", key, err)
		}
		m.trackers[key] = tr
		restored++
	}
	m.l.Info("restored quests", "count", restored)
	return nil
}

// StartQuest may return a started record along with an error matching
// questlog.ErrPersistenceWriteFailed.
func (m *questManager) StartQuest(ctx context.Context, key questKey, title string) (questlog.TimerRecord, error) {
	if err := key.validate(); err != nil {
		return questlog.TimerRecord{}, err
	}
	if strings.TrimSpace(title) == "" {
		return questlog.TimerRecord{}, fmt.Errorf("provide quest title")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.trackers[key]; exists {
		return questlog.TimerRecord{}, errQuestInProgress
	}

	opts := append(m.trackerOpts[:len(m.trackerOpts):len(m.trackerOpts)], tracker.WithTitle(title))
	tr, err := tracker.New(ctx, key.timerKey(), m.store, opts...)
	if err != nil {
		return questlog.TimerRecord{}, fmt.Errorf("failed to start quest: %w", err)
	}
	if tr.Status() != questlog.TimerNotStarted {
		// persisted but never restored
		m.trackers[key] = tr
		return questlog.TimerRecord{}, errQuestInProgress
	}

	err = tr.Start(ctx)
	m.trackers[key] = tr
	m.l.Info("started quest", "key", key.String(), "title", title)
	return tr.Snapshot(), err
}

func (m *questManager) PauseQuest(ctx context.Context, key questKey) (questlog.TimerRecord, error) {
	tr := m.get(key)
	if tr == nil {
		return questlog.TimerRecord{}, errNoQuest
	}
	err := tr.Pause(ctx)
	return tr.Snapshot(), err
}

func (m *questManager) ResumeQuest(ctx context.Context, key questKey) (questlog.TimerRecord, error) {
	tr := m.get(key)
	if tr == nil {
		return questlog.TimerRecord{}, errNoQuest
	}
	err := tr.Resume(ctx)
	return tr.Snapshot(), err
}

func (m *questManager) QuestStatus(key questKey) (questlog.TimerRecord, error) {
	tr := m.get(key)
	if tr == nil {
		return questlog.TimerRecord{}, errNoQuest
	}
	rec := tr.Snapshot()
	rec.CurrentElapsedSeconds = tracker.WholeSeconds(tr.Elapsed())
	return rec, nil
}

// CompleteQuest finalizes the quest and records it. The returned record is valid whenever its
// ID is set, even alongside an error.
func (m *questManager) CompleteQuest(ctx context.Context, key questKey, review string) (questlog.ExistingCompletionRecord, error) {
	tr := m.remove(key)
	if tr == nil {
		return questlog.ExistingCompletionRecord{}, errNoQuest
	}

	title := tr.Snapshot().Title
	rec, ok, clearErr := tr.Complete(ctx)
	if !ok {
		return questlog.ExistingCompletionRecord{}, errNoQuest
	}

	inserted, err := m.recorder.Record(ctx, questlog.CustomQuestID, questlog.QuestCompletionRecord{
		TimerKey:         tr.Key(),
		Title:            title,
		Review:           strings.TrimSpace(review),
		CompletionRecord: rec,
	})
	if err != nil && inserted.ID == "" {
		m.l.Error("failed to record completion", "key", key.String(), "err", err)
	}
	return inserted, errors.Join(clearErr, err)
}

func (m *questManager) CancelQuest(ctx context.Context, key questKey) error {
	tr := m.remove(key)
	if tr == nil {
		return errNoQuest
	}
	m.l.Info("cancelling quest", "key", key.String())
	return tr.Cancel(ctx)
}

func (m *questManager) History(ctx context.Context, key questKey, limit int) ([]questlog.ExistingCompletionRecord, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	return m.recorder.HistoryFor(ctx, key.timerKey(), limit)
}

// Shutdown stops every tracker and leaves persisted timers for the next RestoreQuests.
func (m *questManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, tr := range m.trackers {
		tr.Close()
		delete(m.trackers, key)
	}
}

func (m *questManager) get(key questKey) *tracker.Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackers[key]
}

func (m *questManager) remove(key questKey) *tracker.Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr := m.trackers[key]
	delete(m.trackers, key)
	return tr
}
