// Package tracker times a quest session and excludes paused intervals from the active time.
package tracker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/charmbracelet/log"
)

const DefaultTickInterval = time.Second

type Option func(*Tracker)

func WithClock(c questlog.Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

func WithScheduler(s Scheduler) Option {
	return func(t *Tracker) {
		t.sched = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		t.l = l
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.tickInterval = d
		}
	}
}

// WithTitle names a session that doesn't have a persisted title yet.
func WithTitle(title string) Option {
	return func(t *Tracker) {
		t.title = title
	}
}

func OnComplete(fn func(questlog.CompletionRecord)) Option {
	return func(t *Tracker) {
		t.onComplete = fn
	}
}

// OnTick is called with a snapshot after every recomputation while running.
func OnTick(fn func(questlog.TimerRecord)) Option {
	return func(t *Tracker) {
		t.onTick = fn
	}
}

type Tracker struct {
	key          questlog.TimerKey
	store        questlog.TimerStore
	clock        questlog.Clock
	sched        Scheduler
	l            *log.Logger
	tickInterval time.Duration
	title        string
	onComplete   func(questlog.CompletionRecord)
	onTick       func(questlog.TimerRecord)

	mu       sync.Mutex
	record   questlog.TimerRecord
	stopTick func()
	inert    bool
}

// New restores the session persisted under key, or starts from an untouched one.
func New(ctx context.Context, key questlog.TimerKey, store questlog.TimerStore, opts ...Option) (*Tracker, error) {
	if key == "" {
		return nil, fmt.Errorf("provide timer key")
	}
	t := &Tracker{
		key:          key,
		store:        store,
		clock:        questlog.SystemClock,
		sched:        TickerScheduler{},
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.l == nil {
		t.l = log.NewWithOptions(os.Stderr, log.Options{Prefix: "tracker"})
	}

	rec, ok, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load timer %s: %w", key, err)
	}
	if ok {
		t.record = t.repair(rec)
	}
	if t.record.Title == "" {
		t.record.Title = t.title
	}

	if t.record.Status() == questlog.TimerRunning {
		t.record.CurrentElapsedSeconds = t.elapsedSeconds(t.clock.Now())
		t.startTicking()
	}
	if ok {
		t.l.Debug("restored timer", "key", key, "status", t.record.Status(), "pauses", len(t.record.PauseHistory))
	}
	return t, nil
}

// repair resolves records that break the running/paused exclusivity.
func (t *Tracker) repair(r questlog.TimerRecord) questlog.TimerRecord {
	if r.StartTime.IsZero() {
		return questlog.TimerRecord{Title: r.Title}
	}
	if r.IsRunning && !r.LastPauseStart.IsZero() {
		t.l.Warn("timer both running and paused, treating as paused", "key", t.key)
		r.IsRunning = false
	}
	if !r.IsRunning && r.LastPauseStart.IsZero() {
		t.l.Warn("timer stopped without pause start, pausing now", "key", t.key)
		r.LastPauseStart = t.clock.Now()
	}
	return r
}

func (t *Tracker) Key() questlog.TimerKey {
	return t.key
}

func (t *Tracker) Status() questlog.TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Status()
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() questlog.TimerRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Clone()
}

// Elapsed returns the active time as of now, clamped at zero.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := ActiveElapsed(t.record, t.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// Done reports whether the session was completed, cancelled or closed.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inert
}

// Start begins timing. It is a no-op once the session has started.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inert || t.record.Status() != questlog.TimerNotStarted {
		t.l.Debug("ignoring start", "key", t.key, "status", t.record.Status())
		return nil
	}

	t.record.StartTime = t.clock.Now()
	t.record.IsRunning = true
	t.record.CurrentElapsedSeconds = 0
	t.startTicking()
	return t.persist(ctx, "start")
}

// Pause stops counting. It is a no-op unless running.
func (t *Tracker) Pause(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inert || t.record.Status() != questlog.TimerRunning {
		t.l.Debug("ignoring pause", "key", t.key, "status", t.record.Status())
		return nil
	}

	now := t.clock.Now()
	t.record.CurrentElapsedSeconds = t.elapsedSeconds(now)
	t.record.LastPauseStart = now
	t.record.IsRunning = false
	t.stopTicking()
	return t.persist(ctx, "pause")
}

// Resume closes the open pause and continues counting. It is a no-op unless paused.
func (t *Tracker) Resume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inert || t.record.Status() != questlog.TimerPaused {
		t.l.Debug("ignoring resume", "key", t.key, "status", t.record.Status())
		return nil
	}

	now := t.clock.Now()
	t.record.PauseHistory = t.closePause(t.record.PauseHistory, now)
	t.record.LastPauseStart = time.Time{}
	t.record.IsRunning = true
	t.record.CurrentElapsedSeconds = t.elapsedSeconds(now)
	t.startTicking()
	return t.persist(ctx, "resume")
}

// Complete finalizes the session and clears its persisted record. ok is false when there
// was nothing to complete. A non-nil err only reports the failed clear; rec is still valid.
func (t *Tracker) Complete(ctx context.Context) (rec questlog.CompletionRecord, ok bool, err error) {
	t.mu.Lock()
	if t.inert || t.record.Status() == questlog.TimerNotStarted {
		t.l.Debug("ignoring complete", "key", t.key, "status", t.record.Status())
		t.mu.Unlock()
		return questlog.CompletionRecord{}, false, nil
	}

	now := t.clock.Now()
	history := t.record.Clone().PauseHistory
	if t.record.Status() == questlog.TimerPaused {
		history = t.closePause(history, now)
	}
	t.record.PauseHistory = history
	t.record.LastPauseStart = time.Time{}
	t.record.IsRunning = false
	t.record.CurrentElapsedSeconds = t.elapsedSeconds(now)
	t.stopTicking()
	t.inert = true

	rec = questlog.CompletionRecord{
		StartTime:          t.record.StartTime,
		EndTime:            now,
		TotalActiveSeconds: t.record.CurrentElapsedSeconds,
		PauseHistory:       t.record.Clone().PauseHistory,
	}
	if rec.PauseHistory == nil {
		rec.PauseHistory = []questlog.PauseInterval{}
	}
	err = t.clear(ctx, "complete")
	onComplete := t.onComplete
	t.mu.Unlock()

	t.l.Info("completed timer", "key", t.key, "activeSeconds", rec.TotalActiveSeconds, "pauses", len(rec.PauseHistory))
	if onComplete != nil {
		onComplete(rec)
	}
	return rec, true, err
}

// Cancel discards the session without producing a completion record.
func (t *Tracker) Cancel(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inert {
		return nil
	}

	t.stopTicking()
	t.inert = true
	t.record = questlog.TimerRecord{}
	t.l.Info("cancelled timer", "key", t.key)
	return t.clear(ctx, "cancel")
}

// Close stops ticking and leaves the persisted record for the next New.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTicking()
	t.inert = true
}

func (t *Tracker) tick() {
	t.mu.Lock()
	if t.inert || t.record.Status() != questlog.TimerRunning {
		t.mu.Unlock()
		return
	}
	t.record.CurrentElapsedSeconds = t.elapsedSeconds(t.clock.Now())
	snapshot := t.record.Clone()
	onTick := t.onTick
	t.mu.Unlock()

	if onTick != nil {
		onTick(snapshot)
	}
}

func (t *Tracker) startTicking() {
	if t.stopTick != nil {
		return
	}
	t.stopTick = t.sched.Every(t.tickInterval, t.tick)
}

func (t *Tracker) stopTicking() {
	if t.stopTick != nil {
		t.stopTick()
		t.stopTick = nil
	}
}

func (t *Tracker) closePause(history []questlog.PauseInterval, now time.Time) []questlog.PauseInterval {
	p := questlog.PauseInterval{Start: t.record.LastPauseStart, End: now}
	if !p.End.After(p.Start) {
		t.l.Debug("dropping empty pause", "key", t.key, "start", p.Start, "end", p.End)
		return history
	}
	return append(history, p)
}

func (t *Tracker) elapsedSeconds(now time.Time) int {
	d := ActiveElapsed(t.record, now)
	if d < 0 {
		t.l.Warn("negative elapsed time, clock moved backwards", "key", t.key, "elapsed", d)
	}
	return WholeSeconds(d)
}

// persist is called after the in-memory mutation so a failed write can't undo it.
func (t *Tracker) persist(ctx context.Context, op string) error {
	if err := t.store.Save(ctx, t.key, t.record.Clone()); err != nil {
		t.l.Warn("failed to persist timer", "key", t.key, "op", op, "err", err)
		return questlog.NewPersistenceError(op, t.key, err)
	}
	return nil
}

func (t *Tracker) clear(ctx context.Context, op string) error {
	if err := t.store.Clear(ctx, t.key); err != nil {
		t.l.Warn("failed to clear timer", "key", t.key, "op", op, "err", err)
		return questlog.NewPersistenceError(op, t.key, err)
	}
	return nil
}
