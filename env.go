package questlog

const (
	DatabaseURLKey   = "QUESTLOG_DB_PATH"
	BotNameKey       = "QUESTLOG_BOT_NAME"
	BotTokenKey      = "QUESTLOG_BOT_TOKEN"
	APIURLKey        = "QUESTLOG_API_URL"
	CharacterNameKey = "QUESTLOG_CHARACTER_NAME"
	LogLevelKey      = "QUESTLOG_LOG_LEVEL"
)
