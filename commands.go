package questlog

import (
	"github.com/bwmarrin/discordgo"
)

const (
	StartSubcommand    = "start"
	PauseSubcommand    = "pause"
	ResumeSubcommand   = "resume"
	StatusSubcommand   = "status"
	CompleteSubcommand = "complete"
	CancelSubcommand   = "cancel"
	HistorySubcommand  = "history"

	NameOption   = "name"
	ReviewOption = "review"
	LimitOption  = "limit"
)

func float64Ptr(f float64) *float64 {
	return &f
}

var QuestCommand = discordgo.ApplicationCommand{
	Name:        "quest",
	Description: "time a quest or activity",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        StartSubcommand,
			Description: "start timing an activity",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        NameOption,
					Description: "activity name",
					Required:    true,
					MaxLength:   100,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        PauseSubcommand,
			Description: "pause the running timer",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        ResumeSubcommand,
			Description: "resume the paused timer",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        StatusSubcommand,
			Description: "show elapsed time",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        CompleteSubcommand,
			Description: "complete the activity and log it",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        ReviewOption,
					Description: "a short review of how it went",
					MaxLength:   1000,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        CancelSubcommand,
			Description: "discard the timer without logging",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        HistorySubcommand,
			Description: "list completed activities",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        LimitOption,
					Description: "number of entries (Default: 5)",
					MinValue:    float64Ptr(1),
					MaxValue:    25,
				},
			},
		},
	},
}
