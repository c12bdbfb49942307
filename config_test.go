package questlog

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{DatabaseURLKey, BotNameKey, BotTokenKey, APIURLKey, CharacterNameKey, LogLevelKey} {
			t.Setenv(k, "")
		}

		cfg, err := LoadConfig(false)
		require.NoError(t, err)
		assert.Equal(t, "questlog.db", cfg.DatabaseURL)
		assert.Equal(t, "Questlog", cfg.BotName)
		assert.Equal(t, log.InfoLevel, cfg.LogLevel)
		assert.False(t, cfg.RemoteEnabled())
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv(DatabaseURLKey, "/tmp/q.db")
		t.Setenv(APIURLKey, "https://journal.example.com/api/")
		t.Setenv(CharacterNameKey, "arthur")
		t.Setenv(LogLevelKey, "debug")

		cfg, err := LoadConfig(false)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/q.db", cfg.DatabaseURL)
		assert.Equal(t, "https://journal.example.com/api", cfg.APIURL)
		assert.Equal(t, log.DebugLevel, cfg.LogLevel)
		assert.True(t, cfg.RemoteEnabled())
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv(LogLevelKey, "loud")

		_, err := LoadConfig(false)
		assert.Error(t, err)
	})
}
