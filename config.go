package questlog

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	BotName       string
	BotToken      string
	APIURL        string
	CharacterName string
	LogLevel      log.Level
}

// LoadConfig reads .env (prod) or .env.dev, then the environment.
func LoadConfig(isProd bool) (Config, error) {
	if isProd {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	config := Config{
		DatabaseURL:   os.Getenv(DatabaseURLKey),
		BotName:       os.Getenv(BotNameKey),
		BotToken:      os.Getenv(BotTokenKey),
		APIURL:        strings.TrimRight(os.Getenv(APIURLKey), "/"),
		CharacterName: os.Getenv(CharacterNameKey),
		LogLevel:      log.InfoLevel,
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = "questlog.db"
	}
	if config.BotName == "" {
		config.BotName = "Questlog"
	}
	if lvl := os.Getenv(LogLevelKey); lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", LogLevelKey, err)
		}
		config.LogLevel = parsed
	}

	return config, nil
}

// RemoteEnabled reports whether completions should be submitted to the journaling service.
func (c Config) RemoteEnabled() bool {
	return c.APIURL != "" && c.CharacterName != ""
}
