// Package discordgo provides Discord API adapters using package github.com/bwmarrin/discordgo
package discordgo

import (
	"github.com/bwmarrin/discordgo"
)

type Messenger interface {
	Respond(it *discordgo.Interaction, ephemeral bool, components ...discordgo.MessageComponent) error
	EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	DeferMessageCreate(it *discordgo.Interaction, ephemeral bool) (Followup, error)
}

type Followup func(components ...discordgo.MessageComponent) (*discordgo.Message, error)

func NewMessenger(client *discordgo.Session) Messenger {
	return &messenger{
		client: client,
	}
}

type messenger struct {
	client *discordgo.Session
}

func (m *messenger) Respond(it *discordgo.Interaction, ephemeral bool, components ...discordgo.MessageComponent) error {
	return m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:      messageFlags(ephemeral),
			Components: components,
		},
	})
}

func (m *messenger) EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.InteractionResponseEdit(it, &discordgo.WebhookEdit{
		Components: &components,
	})
}

func (m *messenger) DeferMessageCreate(it *discordgo.Interaction, ephemeral bool) (Followup, error) {
	if err := m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: messageFlags(ephemeral),
		},
	}); err != nil {
		return nil, err
	}
	return func(components ...discordgo.MessageComponent) (*discordgo.Message, error) {
		return m.client.FollowupMessageCreate(it, true, &discordgo.WebhookParams{
			Components: components,
			Flags:      messageFlags(ephemeral),
		})
	}, nil
}

func messageFlags(ephemeral bool) discordgo.MessageFlags {
	flags := discordgo.MessageFlagsIsComponentsV2
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}
	return flags
}

func GetUser(m *discordgo.Interaction) *discordgo.User {
	if m.Member != nil {
		return m.Member.User
	}
	return m.User
}
