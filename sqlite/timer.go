package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
)

const (
	SelectAllTimers = "SELECT key, title, start_time, current_elapsed_seconds, is_running, last_pause_start, created_at, updated_at FROM timers"
	SelectAllPauses = "SELECT timer_key, seq, pause_start, pause_end FROM timer_pauses"
)

type timerEntity struct {
	Key                   string
	Title                 string
	StartTime             sql.NullInt64
	CurrentElapsedSeconds int
	IsRunning             bool
	LastPauseStart        sql.NullInt64
	CreatedAt             int64
	UpdatedAt             int64
}

type pauseEntity struct {
	TimerKey   string
	Seq        int
	PauseStart int64
	PauseEnd   int64
}

type timerRepo struct {
	dbGetter txStdLib.DBGetter
	l        *log.Logger
}

func NewTimerRepo(dbGetter txStdLib.DBGetter, logger *log.Logger) *timerRepo {
	return &timerRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

var _ questlog.TimerRepo = (*timerRepo)(nil)

// UpsertTimer writes the timer row and replaces its pauses. Run it inside a transaction.
func (r *timerRepo) UpsertTimer(ctx context.Context, key questlog.TimerKey, t questlog.TimerRecord) (questlog.ExistingTimerRecord, error) {
	if key == "" {
		return questlog.ExistingTimerRecord{}, fmt.Errorf("provide key")
	}

	db := r.dbGetter(ctx)
	e := mapToTimerEntity(questlog.ExistingTimerRecord{
		ExistingRecord: questlog.NewExistingRecord[questlog.TimerKey](string(key)),
		TimerRecord:    t,
	})

	args := []any{
		e.Key,
		e.Title,
		e.StartTime,
		e.CurrentElapsedSeconds,
		e.IsRunning,
		e.LastPauseStart,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO timers (key, title, start_time, current_elapsed_seconds, is_running, last_pause_start, created_at, updated_at) VALUES " + generateParameters(len(args)) +
		" ON CONFLICT(key) DO UPDATE SET title = excluded.title, start_time = excluded.start_time, current_elapsed_seconds = excluded.current_elapsed_seconds," +
		" is_running = excluded.is_running, last_pause_start = excluded.last_pause_start, updated_at = excluded.updated_at"
	r.l.Debug("upserting timer", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return questlog.ExistingTimerRecord{}, err
	}

	r.l.Debug("replacing timer pauses", "key", key, "count", len(t.PauseHistory))
	if _, err := db.ExecContext(ctx, "DELETE FROM timer_pauses WHERE timer_key = ?", e.Key); err != nil {
		return questlog.ExistingTimerRecord{}, err
	}
	for i, p := range t.PauseHistory {
		pe := mapToPauseEntity(key, i, p)
		_, err := db.ExecContext(ctx,
			"INSERT INTO timer_pauses (timer_key, seq, pause_start, pause_end) VALUES "+generateParameters(4),
			pe.TimerKey, pe.Seq, pe.PauseStart, pe.PauseEnd,
		)
		if err != nil {
			return questlog.ExistingTimerRecord{}, err
		}
	}

	return r.GetTimer(ctx, key)
}

func (r *timerRepo) GetTimer(ctx context.Context, key questlog.TimerKey) (questlog.ExistingTimerRecord, error) {
	if key == "" {
		return questlog.ExistingTimerRecord{}, fmt.Errorf("provide key")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE key = ?", SelectAllTimers), key,
	)
	existing, err := extractTimer(row)
	if err != nil {
		return questlog.ExistingTimerRecord{}, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("%s WHERE timer_key = ? ORDER BY seq ASC", SelectAllPauses), key)
	if err != nil {
		return questlog.ExistingTimerRecord{}, err
	}
	defer rows.Close() //nolint

	for rows.Next() {
		var pe pauseEntity
		if err := rows.Scan(&pe.TimerKey, &pe.Seq, &pe.PauseStart, &pe.PauseEnd); err != nil {
			return questlog.ExistingTimerRecord{}, err
		}
		existing.PauseHistory = append(existing.PauseHistory, mapToPauseInterval(pe))
	}
	if err := rows.Err(); err != nil {
		return questlog.ExistingTimerRecord{}, err
	}
	return existing, nil
}

func (r *timerRepo) DeleteTimer(ctx context.Context, key questlog.TimerKey) (questlog.ExistingTimerRecord, error) {
	existing, err := r.GetTimer(ctx, key)
	if err != nil {
		return questlog.ExistingTimerRecord{}, err
	}

	db := r.dbGetter(ctx)
	r.l.Debug("deleting timer", "key", key)
	if _, err := db.ExecContext(ctx, "DELETE FROM timer_pauses WHERE timer_key = ?", key); err != nil {
		return questlog.ExistingTimerRecord{}, err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM timers WHERE key = ?", key); err != nil {
		return questlog.ExistingTimerRecord{}, err
	}

	return existing, nil
}

func (r *timerRepo) GetTimerKeys(ctx context.Context) ([]questlog.TimerKey, error) {
	db := r.dbGetter(ctx)
	rows, err := db.QueryContext(ctx, "SELECT key FROM timers ORDER BY created_at ASC, key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var keys []questlog.TimerKey
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, questlog.TimerKey(k))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func extractTimer(s scannable) (questlog.ExistingTimerRecord, error) {
	var e timerEntity
	if err := s.Scan(&e.Key, &e.Title, &e.StartTime, &e.CurrentElapsedSeconds, &e.IsRunning, &e.LastPauseStart, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return questlog.ExistingTimerRecord{}, ErrNotFound
		}
		return questlog.ExistingTimerRecord{}, err
	}

	return mapToExistingTimerRecord(e), nil
}

func mapToTimerEntity(t questlog.ExistingTimerRecord) timerEntity {
	return timerEntity{
		Key:                   string(t.ID),
		Title:                 t.Title,
		StartTime:             toNullMillis(t.StartTime),
		CurrentElapsedSeconds: t.CurrentElapsedSeconds,
		IsRunning:             t.IsRunning,
		LastPauseStart:        toNullMillis(t.LastPauseStart),
		CreatedAt:             t.CreatedAt.Unix(),
		UpdatedAt:             t.UpdatedAt.Unix(),
	}
}

func mapToExistingTimerRecord(e timerEntity) questlog.ExistingTimerRecord {
	return questlog.ExistingTimerRecord{
		ExistingRecord: questlog.ExistingRecord[questlog.TimerKey]{
			ID:        questlog.TimerKey(e.Key),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		TimerRecord: questlog.TimerRecord{
			Title:                 e.Title,
			StartTime:             fromNullMillis(e.StartTime),
			CurrentElapsedSeconds: e.CurrentElapsedSeconds,
			IsRunning:             e.IsRunning,
			LastPauseStart:        fromNullMillis(e.LastPauseStart),
		},
	}
}

func mapToPauseEntity(key questlog.TimerKey, seq int, p questlog.PauseInterval) pauseEntity {
	return pauseEntity{
		TimerKey:   string(key),
		Seq:        seq,
		PauseStart: p.Start.UnixMilli(),
		PauseEnd:   p.End.UnixMilli(),
	}
}

func mapToPauseInterval(e pauseEntity) questlog.PauseInterval {
	return questlog.PauseInterval{
		Start: time.UnixMilli(e.PauseStart),
		End:   time.UnixMilli(e.PauseEnd),
	}
}

func toNullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromNullMillis(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.UnixMilli(n.Int64)
}
