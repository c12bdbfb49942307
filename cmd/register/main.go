package main

import (
	"flag"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/questlog-go"
)

func main() {
	isProd := flag.Bool("prod", false, "load .env instead of .env.dev")
	guildID := flag.String("guild", "", "register for a single guild instead of globally")
	flag.Parse()

	cfg, err := questlog.LoadConfig(*isProd)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.BotToken == "" {
		log.Fatal("provide " + questlog.BotTokenKey)
	}

	bot, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}

	// Open a connection
	if err := bot.Open(); err != nil {
		log.Fatal("Error opening connection", "err", err)
	}
	defer bot.Close() //nolint

	app, err := bot.Application("@me")
	if err != nil {
		log.Fatal("failed to get application", "err", err)
	}

	cmds := []*discordgo.ApplicationCommand{
		&questlog.QuestCommand,
	}

	created, err := bot.ApplicationCommandBulkOverwrite(app.ID, *guildID, cmds)
	if err != nil {
		log.Fatal(err)
	}

	for _, cmd := range created {
		fmt.Printf("%s: %s\n", cmd.Name, cmd.Description)
	}
}
