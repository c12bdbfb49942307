package discordgo

import (
	"github.com/bwmarrin/discordgo"
)

type Color int

const (
	ColorDefault   Color = 0x000000
	ColorGreen     Color = 0x57f287
	ColorBlue      Color = 0x3498db
	ColorYellow    Color = 0xfee75c
	ColorGold      Color = 0xf1c40f
	ColorRed       Color = 0xed4245
	ColorLightGrey Color = 0xbcc0c0
	ColorBlurple   Color = 0x5865f2
)

func (c Color) ToInt() *int {
	i := int(c)
	return &i
}

func TextDisplay(content string) discordgo.TextDisplay {
	return discordgo.TextDisplay{
		Content: content,
	}
}

func Container(accent Color, components ...discordgo.MessageComponent) discordgo.Container {
	return discordgo.Container{
		Components:  components,
		AccentColor: accent.ToInt(),
	}
}
