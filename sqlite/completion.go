package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/benjamonnguyen/questlog-go"
)

const (
	SelectAllCompletions = "SELECT id, timer_key, title, review, start_time, end_time, total_active_seconds, pause_history, created_at, updated_at FROM completions"
)

type completionEntity struct {
	ID                 string
	TimerKey           string
	Title              string
	Review             string
	StartTime          int64
	EndTime            int64
	TotalActiveSeconds int
	PauseHistory       string
	CreatedAt          int64
	UpdatedAt          int64
}

type pauseJSON struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type completionRepo struct {
	dbGetter txStdLib.DBGetter
	l        *log.Logger
}

func NewCompletionRepo(dbGetter txStdLib.DBGetter, logger *log.Logger) *completionRepo {
	return &completionRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

var _ questlog.CompletionRepo = (*completionRepo)(nil)

func (r *completionRepo) InsertCompletion(ctx context.Context, c questlog.QuestCompletionRecord) (questlog.ExistingCompletionRecord, error) {
	if c.TimerKey == "" {
		return questlog.ExistingCompletionRecord{}, fmt.Errorf("provide required field 'TimerKey'")
	}

	db := r.dbGetter(ctx)
	existingRecord := questlog.ExistingCompletionRecord{
		QuestCompletionRecord: c,
		ExistingRecord:        questlog.NewExistingRecord[questlog.CompletionID](uuid.NewString()),
	}
	e, err := mapToCompletionEntity(existingRecord)
	if err != nil {
		return questlog.ExistingCompletionRecord{}, err
	}

	args := []any{
		e.ID,
		e.TimerKey,
		e.Title,
		e.Review,
		e.StartTime,
		e.EndTime,
		e.TotalActiveSeconds,
		e.PauseHistory,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO completions (id, timer_key, title, review, start_time, end_time, total_active_seconds, pause_history, created_at, updated_at) VALUES " + generateParameters(len(args))
	r.l.Debug("creating completion", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return questlog.ExistingCompletionRecord{}, err
	}

	return existingRecord, nil
}

func (r *completionRepo) GetCompletion(ctx context.Context, id questlog.CompletionID) (questlog.ExistingCompletionRecord, error) {
	if id == "" {
		return questlog.ExistingCompletionRecord{}, fmt.Errorf("provide id")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE id = ?", SelectAllCompletions), id,
	)
	return extractCompletion(row)
}

// GetCompletions returns the most recently ended completions first.
func (r *completionRepo) GetCompletions(ctx context.Context, limit int) ([]questlog.ExistingCompletionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("%s ORDER BY end_time DESC, created_at DESC LIMIT ?", SelectAllCompletions)
	return r.queryCompletions(ctx, query, limit)
}

func (r *completionRepo) GetCompletionsByTimerKey(ctx context.Context, key questlog.TimerKey, limit int) ([]questlog.ExistingCompletionRecord, error) {
	if key == "" {
		return nil, fmt.Errorf("provide key")
	}
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("%s WHERE timer_key = ? ORDER BY end_time DESC, created_at DESC LIMIT ?", SelectAllCompletions)
	return r.queryCompletions(ctx, query, key, limit)
}

func (r *completionRepo) queryCompletions(ctx context.Context, query string, args ...any) ([]questlog.ExistingCompletionRecord, error) {
	db := r.dbGetter(ctx)
	r.l.Debug("getting completions", "query", query, "args", args)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var completions []questlog.ExistingCompletionRecord
	for rows.Next() {
		c, err := extractCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *completionRepo) DeleteCompletion(ctx context.Context, id questlog.CompletionID) (questlog.ExistingCompletionRecord, error) {
	existing, err := r.GetCompletion(ctx, id)
	if err != nil {
		return questlog.ExistingCompletionRecord{}, err
	}

	db := r.dbGetter(ctx)
	query := "DELETE FROM completions WHERE id = ?"
	r.l.Debug("deleting completion", "query", query, "id", id)
	if _, err := db.ExecContext(ctx, query, id); err != nil {
		return questlog.ExistingCompletionRecord{}, err
	}

	return existing, nil
}

func extractCompletion(s scannable) (questlog.ExistingCompletionRecord, error) {
	var e completionEntity
	if err := s.Scan(&e.ID, &e.TimerKey, &e.Title, &e.Review, &e.StartTime, &e.EndTime, &e.TotalActiveSeconds, &e.PauseHistory, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return questlog.ExistingCompletionRecord{}, ErrNotFound
		}
		return questlog.ExistingCompletionRecord{}, err
	}

	return mapToExistingCompletionRecord(e)
}

func mapToCompletionEntity(c questlog.ExistingCompletionRecord) (completionEntity, error) {
	pauses := make([]pauseJSON, 0, len(c.PauseHistory))
	for _, p := range c.PauseHistory {
		pauses = append(pauses, pauseJSON{Start: p.Start.UnixMilli(), End: p.End.UnixMilli()})
	}
	b, err := json.Marshal(pauses)
	if err != nil {
		return completionEntity{}, fmt.Errorf("failed to encode pause history: %w", err)
	}

	return completionEntity{
		ID:                 string(c.ID),
		TimerKey:           string(c.TimerKey),
		Title:              c.Title,
		Review:             c.Review,
		StartTime:          c.StartTime.UnixMilli(),
		EndTime:            c.EndTime.UnixMilli(),
		TotalActiveSeconds: c.TotalActiveSeconds,
		PauseHistory:       string(b),
		CreatedAt:          c.CreatedAt.Unix(),
		UpdatedAt:          c.UpdatedAt.Unix(),
	}, nil
}

func mapToExistingCompletionRecord(e completionEntity) (questlog.ExistingCompletionRecord, error) {
	var pauses []pauseJSON
	if err := json.Unmarshal([]byte(e.PauseHistory), &pauses); err != nil {
		return questlog.ExistingCompletionRecord{}, fmt.Errorf("failed to decode pause history of completion %s: %w", e.ID, err)
	}
	history := make([]questlog.PauseInterval, 0, len(pauses))
	for _, p := range pauses {
		history = append(history, questlog.PauseInterval{
			Start: time.UnixMilli(p.Start),
			End:   time.UnixMilli(p.End),
		})
	}

	return questlog.ExistingCompletionRecord{
		ExistingRecord: questlog.ExistingRecord[questlog.CompletionID]{
			ID:        questlog.CompletionID(e.ID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		QuestCompletionRecord: questlog.QuestCompletionRecord{
			TimerKey: questlog.TimerKey(e.TimerKey),
			Title:    e.Title,
			Review:   e.Review,
			CompletionRecord: questlog.CompletionRecord{
				StartTime:          time.UnixMilli(e.StartTime),
				EndTime:            time.UnixMilli(e.EndTime),
				TotalActiveSeconds: e.TotalActiveSeconds,
				PauseHistory:       history,
			},
		},
	}, nil
}
