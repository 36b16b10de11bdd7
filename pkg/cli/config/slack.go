package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/janus/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken      string
	searchToken   string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (xoxb-, for posting messages)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("JANUS_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-search-token",
			Usage:       "Slack User OAuth Token (xoxp-, for search.messages and thread lookups)",
			Category:    "Slack",
			Destination: &x.searchToken,
			Sources:     cli.EnvVars("JANUS_SLACK_SEARCH_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("JANUS_SLACK_SIGNING_SECRET"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("search-token.len", len(x.searchToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// Validate checks that every credential required by serve is set
func (x *Slack) Validate() error {
	required := []struct {
		flag  string
		value string
	}{
		{"slack-signing-secret", x.signingSecret},
		{"slack-bot-token", x.botToken},
		{"slack-search-token", x.searchToken},
	}
	for _, r := range required {
		if r.value == "" {
			return goerr.Wrap(ErrMissingCredential, "missing Slack credential", goerr.V(FlagKey, r.flag))
		}
	}
	return nil
}

// Configure creates the Slack service from the credentials and search settings
func (x *Slack) Configure(search SearchConfig) (slacksvc.Service, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}

	svc, err := slacksvc.New(x.botToken, x.searchToken,
		slacksvc.WithSearchRateLimit(search.RatePerMinute),
		slacksvc.WithSearchCount(search.Count),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}

func (x *Slack) SigningSecret() string {
	return x.signingSecret
}
