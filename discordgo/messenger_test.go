package discordgo

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestMessageFlags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, discordgo.MessageFlagsIsComponentsV2, messageFlags(false))
	assert.Equal(t, discordgo.MessageFlagsIsComponentsV2|discordgo.MessageFlagsEphemeral, messageFlags(true))
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	member := &discordgo.User{ID: "member"}
	direct := &discordgo.User{ID: "direct"}

	assert.Equal(t, member, GetUser(&discordgo.Interaction{Member: &discordgo.Member{User: member}, User: direct}))
	assert.Equal(t, direct, GetUser(&discordgo.Interaction{User: direct}))
}

func TestContainer(t *testing.T) {
	t.Parallel()

	c := Container(ColorGreen, TextDisplay("hi"))
	assert.Equal(t, int(ColorGreen), *c.AccentColor)
	assert.Len(t, c.Components, 1)
}
