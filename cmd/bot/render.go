package main

import (
	"fmt"
	"strings"

	dg "github.com/bwmarrin/discordgo"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/discordgo"
	"github.com/benjamonnguyen/questlog-go/tracker"
)

const (
	defaultErrorMsg = "Looks like something went wrong. Try again in a bit or reach out to support."
	persistWarning  = "-# Progress couldn't be saved and may be lost if the bot restarts."
	submitWarning   = "-# Saved to your history, but the journal didn't accept it."
)

func questText(r questlog.TimerRecord) string {
	status := r.Status()
	return strings.Join([]string{
		"### " + r.Title,
		fmt.Sprintf("`%s`", tracker.FormatElapsed(r.CurrentElapsedSeconds)),
		fmt.Sprintf("%s · %d pause(s)", status, len(r.PauseHistory)),
	}, "\n")
}

func QuestMessageComponents(r questlog.TimerRecord) []dg.MessageComponent {
	accent := discordgo.ColorGreen
	if r.Status() == questlog.TimerPaused {
		accent = discordgo.ColorLightGrey
	}
	return []dg.MessageComponent{
		discordgo.Container(accent, discordgo.TextDisplay(questText(r))),
	}
}

func completionText(c questlog.ExistingCompletionRecord) string {
	var paused int
	for _, p := range c.PauseHistory {
		paused += int(p.Duration().Seconds())
	}
	parts := []string{
		"### Completed: " + c.Title,
		fmt.Sprintf("Active time `%s`", tracker.FormatElapsed(c.TotalActiveSeconds)),
		fmt.Sprintf("Paused %d time(s) for `%s`", len(c.PauseHistory), tracker.FormatElapsed(paused)),
	}
	if c.Review != "" {
		parts = append(parts, "> "+c.Review)
	}
	return strings.Join(parts, "\n")
}

func CompletionMessageComponents(c questlog.ExistingCompletionRecord) []dg.MessageComponent {
	return []dg.MessageComponent{
		discordgo.Container(discordgo.ColorGold, discordgo.TextDisplay(completionText(c))),
	}
}

func historyText(list []questlog.ExistingCompletionRecord) string {
	if len(list) == 0 {
		return "No completed quests yet."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, "### Quest history")
	for _, c := range list {
		lines = append(lines, fmt.Sprintf("`%s` **%s** <t:%d:R>",
			tracker.FormatElapsed(c.TotalActiveSeconds), c.Title, c.EndTime.Unix()))
	}
	return strings.Join(lines, "\n")
}

func HistoryMessageComponents(list []questlog.ExistingCompletionRecord) []dg.MessageComponent {
	return []dg.MessageComponent{
		discordgo.Container(discordgo.ColorBlurple, discordgo.TextDisplay(historyText(list))),
	}
}
