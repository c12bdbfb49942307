// Package journal records finished quest sessions in the local history and, when configured,
// on the remote journaling service.
package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
)

// ErrSubmitFailed marks a completion that was saved locally but not accepted remotely.
var ErrSubmitFailed = errors.New("remote submit failed")

type Submitter interface {
	Submit(ctx context.Context, characterName, questID string, r questlog.QuestCompletionRecord) error
}

type Recorder struct {
	repo          questlog.CompletionRepo
	tx            transactor.Transactor
	submitter     Submitter
	characterName string
	l             *log.Logger
}

// NewRecorder returns a Recorder that only writes local history. Use WithSubmitter to also
// send completions to the journaling service.
func NewRecorder(repo questlog.CompletionRepo, tx transactor.Transactor, logger *log.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		tx:   tx,
		l:    logger,
	}
}

func (r *Recorder) WithSubmitter(s Submitter, characterName string) *Recorder {
	r.submitter = s
	r.characterName = characterName
	return r
}

// Record inserts c into the history and submits it. A submit failure returns the inserted
// record along with an error matching ErrSubmitFailed.
func (r *Recorder) Record(ctx context.Context, questID string, c questlog.QuestCompletionRecord) (questlog.ExistingCompletionRecord, error) {
	var inserted questlog.ExistingCompletionRecord
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = r.repo.InsertCompletion(ctx, c)
		return err
	})
	if err != nil {
		return questlog.ExistingCompletionRecord{}, fmt.Errorf("failed to insert completion: %w", err)
	}
	r.l.Info("recorded completion", "id", inserted.ID, "key", c.TimerKey, "activeSeconds", c.TotalActiveSeconds)

	if r.submitter == nil {
		return inserted, nil
	}
	if err := r.submitter.Submit(ctx, r.characterName, questID, c); err != nil {
		r.l.Warn("failed to submit completion", "id", inserted.ID, "character", r.characterName, "err", err)
		return inserted, errors.Join(ErrSubmitFailed, err)
	}
	r.l.Debug("submitted completion", "id", inserted.ID, "character", r.characterName)
	return inserted, nil
}

func (r *Recorder) History(ctx context.Context, limit int) ([]questlog.ExistingCompletionRecord, error) {
	return r.repo.GetCompletions(ctx, limit)
}

func (r *Recorder) HistoryFor(ctx context.Context, key questlog.TimerKey, limit int) ([]questlog.ExistingCompletionRecord, error) {
	return r.repo.GetCompletionsByTimerKey(ctx, key, limit)
}

func (r *Recorder) Delete(ctx context.Context, id questlog.CompletionID) (questlog.ExistingCompletionRecord, error) {
	var deleted questlog.ExistingCompletionRecord
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = r.repo.DeleteCompletion(ctx, id)
		return err
	})
	return deleted, err
}
