package sqlite

import (
	"context"
	"errors"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
)

// timerStore runs each tracker persistence call in its own transaction.
type timerStore struct {
	tx   transactor.Transactor
	repo questlog.TimerRepo
	l    *log.Logger
}

func NewTimerStore(tx transactor.Transactor, repo questlog.TimerRepo, logger *log.Logger) *timerStore {
	return &timerStore{
		tx:   tx,
		repo: repo,
		l:    logger,
	}
}

var _ questlog.TimerStore = (*timerStore)(nil)

func (s *timerStore) Load(ctx context.Context, key questlog.TimerKey) (questlog.TimerRecord, bool, error) {
	existing, err := s.repo.GetTimer(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return questlog.TimerRecord{}, false, nil
	}
	if err != nil {
		return questlog.TimerRecord{}, false, err
	}
	return existing.TimerRecord, true, nil
}

func (s *timerStore) Save(ctx context.Context, key questlog.TimerKey, r questlog.TimerRecord) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := s.repo.UpsertTimer(ctx, key, r)
		return err
	})
}

func (s *timerStore) Clear(ctx context.Context, key questlog.TimerKey) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := s.repo.DeleteTimer(ctx, key)
		if errors.Is(err, ErrNotFound) {
			s.l.Debug("nothing to clear", "key", key)
			return nil
		}
		return err
	})
}
