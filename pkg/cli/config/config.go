package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/janus/pkg/domain/model"
	slacksvc "github.com/secmon-lab/janus/pkg/service/slack"
)

// BotConfig is the optional TOML configuration file
//
//	[bot]
//	name = "Janus"
//	icon_emoji = ":robot_face:"
//
//	[search]
//	rate_per_minute = 20
//	count = 20
type BotConfig struct {
	Bot    model.BotProfile `toml:"bot"`
	Search SearchConfig     `toml:"search"`
}

// SearchConfig tunes the workspace search calls
type SearchConfig struct {
	RatePerMinute int `toml:"rate_per_minute"`
	Count         int `toml:"count"`
}

// DefaultBotConfig returns the configuration used when no file is given
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		Bot: model.DefaultBotProfile(),
		Search: SearchConfig{
			RatePerMinute: slacksvc.DefaultSearchRatePerMinute,
			Count:         slacksvc.DefaultSearchCount,
		},
	}
}

// Validate checks if the BotConfig is valid
func (c *BotConfig) Validate() error {
	if err := c.Bot.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.Search.RatePerMinute < 0 {
		return goerr.Wrap(ErrInvalidConfig, "search.rate_per_minute must not be negative",
			goerr.V("rate_per_minute", c.Search.RatePerMinute))
	}
	if c.Search.Count < 1 || c.Search.Count > 100 {
		return goerr.Wrap(ErrInvalidConfig, "search.count must be between 1 and 100",
			goerr.V("count", c.Search.Count))
	}
	return nil
}

func (c *BotConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Bot.Name),
		slog.String("icon_emoji", c.Bot.IconEmoji),
		slog.Int("search_rate_per_minute", c.Search.RatePerMinute),
		slog.Int("search_count", c.Search.Count),
	)
}

// LoadBotConfiguration loads the bot configuration from a TOML file. Keys missing from the
// file keep their default values.
func LoadBotConfiguration(path string) (*BotConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, err.Error(), goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultBotConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()),
		)
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}
