// Package api submits completed sessions to the journaling service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
)

type PauseDetails struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// TimerDetails is the wire form of a completion record. Instants are epoch milliseconds and
// TotalTime is in seconds.
type TimerDetails struct {
	StartTime    int64          `json:"startTime"`
	EndTime      int64          `json:"endTime"`
	TotalTime    int            `json:"totalTime"`
	PauseHistory []PauseDetails `json:"pauseHistory"`
}

func NewTimerDetails(r questlog.CompletionRecord) TimerDetails {
	pauses := make([]PauseDetails, 0, len(r.PauseHistory))
	for _, p := range r.PauseHistory {
		pauses = append(pauses, PauseDetails{StartTime: p.Start.UnixMilli(), EndTime: p.End.UnixMilli()})
	}
	return TimerDetails{
		StartTime:    r.StartTime.UnixMilli(),
		EndTime:      r.EndTime.UnixMilli(),
		TotalTime:    r.TotalActiveSeconds,
		PauseHistory: pauses,
	}
}

type ActivityLog struct {
	ActivityName string       `json:"activityName"`
	TimerDetails TimerDetails `json:"timerDetails"`
	Review       string       `json:"review"`
}

type Quest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type QuestCompletion struct {
	Quest        Quest        `json:"quest"`
	TimerDetails TimerDetails `json:"timerDetails"`
	Review       string       `json:"review"`
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	hc      *http.Client
	l       *log.Logger
}

func NewClient(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 20 * time.Second},
		l:       logger,
	}
}

func (c *Client) LogActivity(ctx context.Context, characterName string, a ActivityLog) error {
	return c.post(ctx, "/activities/log/"+url.PathEscape(characterName), a)
}

func (c *Client) CompleteQuest(ctx context.Context, characterName string, q QuestCompletion) error {
	return c.post(ctx, "/quests/complete/"+url.PathEscape(characterName), q)
}

// Submit sends a completion as a quest when questID names one, otherwise as a free-form activity.
func (c *Client) Submit(ctx context.Context, characterName, questID string, r questlog.QuestCompletionRecord) error {
	details := NewTimerDetails(r.CompletionRecord)
	if questID == "" || questID == questlog.CustomQuestID {
		return c.LogActivity(ctx, characterName, ActivityLog{
			ActivityName: r.Title,
			TimerDetails: details,
			Review:       r.Review,
		})
	}
	return c.CompleteQuest(ctx, characterName, QuestCompletion{
		Quest:        Quest{ID: questID, Title: r.Title},
		TimerDetails: details,
		Review:       r.Review,
	})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.l.Debug("posting to api", "path", path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach api: %w", err)
	}
	defer resp.Body.Close() //nolint

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
