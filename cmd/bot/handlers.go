package main

import (
	"context"
	"errors"

	dg "github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
	"github.com/benjamonnguyen/questlog-go/discordgo"
	"github.com/benjamonnguyen/questlog-go/journal"
)

const defaultHistoryLimit = 5

// questSubcommand returns the invoked /quest subcommand, or nil for any other interaction.
func questSubcommand(m *dg.InteractionCreate) *dg.ApplicationCommandInteractionDataOption {
	if m.Type != dg.InteractionApplicationCommand {
		return nil
	}
	data := m.ApplicationCommandData()
	if data.Name != questlog.QuestCommand.Name || len(data.Options) == 0 {
		return nil
	}
	sub := data.Options[0]
	if sub.Type != dg.ApplicationCommandOptionSubCommand {
		return nil
	}
	return sub
}

func stringOption(sub *dg.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name {
			if v, ok := opt.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}

func intOption(sub *dg.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	for _, opt := range sub.Options {
		if opt.Name == name {
			if v, ok := opt.Value.(float64); ok {
				return int(v)
			}
		}
	}
	return fallback
}

func keyFor(m *dg.InteractionCreate) questKey {
	k := questKey{guildID: m.GuildID}
	if u := discordgo.GetUser(m.Interaction); u != nil {
		k.userID = u.ID
	}
	return k
}

func respond(dm discordgo.Messenger, m *dg.InteractionCreate, components ...dg.MessageComponent) {
	if err := dm.Respond(m.Interaction, true, components...); err != nil {
		log.Error("failed to respond", "interactionID", m.ID, "err", err)
	}
}

func respondText(dm discordgo.Messenger, m *dg.InteractionCreate, text string) {
	respond(dm, m, discordgo.TextDisplay(text))
}

// timerResponse renders r, noting a persistence failure. Other errors get the default message.
func timerResponse(dm discordgo.Messenger, m *dg.InteractionCreate, r questlog.TimerRecord, err error) {
	switch {
	case err == nil:
		respond(dm, m, QuestMessageComponents(r)...)
	case errors.Is(err, errNoQuest):
		respondText(dm, m, "You don't have a quest in progress. Use `/quest start` to begin one.")
	case errors.Is(err, errQuestInProgress):
		respondText(dm, m, "You already have a quest in progress. Complete or cancel it first.")
	case errors.Is(err, questlog.ErrPersistenceWriteFailed):
		respond(dm, m, append(QuestMessageComponents(r), discordgo.TextDisplay(persistWarning))...)
	default:
		respondText(dm, m, defaultErrorMsg)
	}
}

func StartQuest(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.StartSubcommand {
		return false
	}

	key := keyFor(m)
	r, err := mgr.StartQuest(ctx, key, stringOption(sub, questlog.NameOption))
	if err != nil {
		log.Error("failed to start quest", "key", key.String(), "err", err)
	}
	timerResponse(dm, m, r, err)
	return true
}

func PauseQuest(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.PauseSubcommand {
		return false
	}

	key := keyFor(m)
	r, err := mgr.PauseQuest(ctx, key)
	if err != nil {
		log.Error("failed to pause quest", "key", key.String(), "err", err)
	}
	timerResponse(dm, m, r, err)
	return true
}

func ResumeQuest(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.ResumeSubcommand {
		return false
	}

	key := keyFor(m)
	r, err := mgr.ResumeQuest(ctx, key)
	if err != nil {
		log.Error("failed to resume quest", "key", key.String(), "err", err)
	}
	timerResponse(dm, m, r, err)
	return true
}

func QuestStatus(mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.StatusSubcommand {
		return false
	}

	r, err := mgr.QuestStatus(keyFor(m))
	timerResponse(dm, m, r, err)
	return true
}

func CompleteQuest(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.CompleteSubcommand {
		return false
	}

	// remote submit can be slow
	followup, err := dm.DeferMessageCreate(m.Interaction, false)
	if err != nil {
		log.Error(err)
		return true
	}

	key := keyFor(m)
	c, err := mgr.CompleteQuest(ctx, key, stringOption(sub, questlog.ReviewOption))
	var components []dg.MessageComponent
	switch {
	case errors.Is(err, errNoQuest):
		components = append(components, discordgo.TextDisplay("You don't have a quest in progress."))
	case c.ID == "":
		log.Error("failed to complete quest", "key", key.String(), "err", err)
		components = append(components, discordgo.TextDisplay(defaultErrorMsg))
	default:
		components = CompletionMessageComponents(c)
		if errors.Is(err, journal.ErrSubmitFailed) {
			components = append(components, discordgo.TextDisplay(submitWarning))
		}
		log.Info("completed quest", "key", key.String(), "completionID", c.ID, "err", err)
	}
	if _, err := followup(components...); err != nil {
		log.Error(err)
	}
	return true
}

func CancelQuest(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.CancelSubcommand {
		return false
	}

	key := keyFor(m)
	err := mgr.CancelQuest(ctx, key)
	switch {
	case errors.Is(err, errNoQuest):
		respondText(dm, m, "You don't have a quest in progress.")
	case err != nil && !errors.Is(err, questlog.ErrPersistenceWriteFailed):
		log.Error("failed to cancel quest", "key", key.String(), "err", err)
		respondText(dm, m, defaultErrorMsg)
	default:
		respondText(dm, m, "Quest cancelled. Nothing was logged.")
	}
	return true
}

func QuestHistory(ctx context.Context, mgr QuestManager, dm discordgo.Messenger, m *dg.InteractionCreate) bool {
	sub := questSubcommand(m)
	if sub == nil || sub.Name != questlog.HistorySubcommand {
		return false
	}

	key := keyFor(m)
	list, err := mgr.History(ctx, key, intOption(sub, questlog.LimitOption, defaultHistoryLimit))
	if err != nil {
		log.Error("failed to get history", "key", key.String(), "err", err)
		respondText(dm, m, defaultErrorMsg)
		return true
	}
	respond(dm, m, HistoryMessageComponents(list)...)
	return true
}
