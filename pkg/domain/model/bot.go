package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultBotName      = "Janus"
	DefaultBotIconEmoji = ":robot_face:"
)

// BotProfile is the identity Janus posts with
type BotProfile struct {
	Name      string `toml:"name"`
	IconEmoji string `toml:"icon_emoji"`
}

// DefaultBotProfile returns the profile used when no configuration overrides it
func DefaultBotProfile() BotProfile {
	return BotProfile{
		Name:      DefaultBotName,
		IconEmoji: DefaultBotIconEmoji,
	}
}

// IsSelf reports whether username is the bot's own display name, ignoring case
func (x BotProfile) IsSelf(username string) bool {
	return strings.EqualFold(username, x.Name)
}

// CommandKeyword returns the lower-cased command prefix, e.g. "janus"
func (x BotProfile) CommandKeyword() string {
	return strings.ToLower(x.Name)
}

// Validate checks that the profile can be used to post messages
func (x BotProfile) Validate() error {
	if strings.TrimSpace(x.Name) == "" {
		return goerr.Wrap(ErrInvalidProfile, "bot name is required")
	}
	if strings.ContainsAny(x.Name, " \t\n") {
		return goerr.Wrap(ErrInvalidProfile, "bot name must be a single word", goerr.V("name", x.Name))
	}
	if x.IconEmoji != "" && (!strings.HasPrefix(x.IconEmoji, ":") || !strings.HasSuffix(x.IconEmoji, ":")) {
		return goerr.Wrap(ErrInvalidProfile, "icon emoji must look like :name:", goerr.V("icon_emoji", x.IconEmoji))
	}
	return nil
}

// CommandList is the help text returned verbatim by the help command
type CommandList string

// NewCommandList validates the raw resource contents
func NewCommandList(data []byte) (CommandList, error) {
	if strings.TrimSpace(string(data)) == "" {
		return "", goerr.Wrap(ErrEmptyCommandList, "command list resource has no content")
	}
	return CommandList(data), nil
}

func (x CommandList) String() string {
	return string(x)
}
