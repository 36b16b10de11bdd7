package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, searchToken, signingSecret string) *Slack {
	return &Slack{
		botToken:      botToken,
		searchToken:   searchToken,
		signingSecret: signingSecret,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, redisURL string) *Repository {
	return &Repository{
		backend:   backend,
		projectID: projectID,
		redisURL:  redisURL,
	}
}

// NewBotForTest creates a Bot config for testing purposes
func NewBotForTest(configPath, commandList string) *Bot {
	return &Bot{
		configPath:  configPath,
		commandList: commandList,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

var ParseGCSURL = parseGCSURL

// RedisKeyPrefixOf returns the configured Redis key prefix
func RedisKeyPrefixOf(r *Repository) string {
	return r.redisKeyPrefix
}

// WithRedisKeyPrefixForTest sets the Redis key prefix
func WithRedisKeyPrefixForTest(r *Repository, prefix string) *Repository {
	r.redisKeyPrefix = prefix
	return r
}
