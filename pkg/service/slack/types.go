package slack

import (
	"context"

	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Service provides interface to the Slack Web API calls Janus makes
type Service interface {
	// AuthTest verifies the bot token and returns the identity it belongs to
	AuthTest(ctx context.Context) (*Identity, error)

	// SearchAuthTest verifies the user token used for workspace search
	SearchAuthTest(ctx context.Context) (*Identity, error)

	// OpenDirectMessage opens (or reuses) the direct message channel with userID and returns its ID.
	// Channel IDs are cached per user.
	OpenDirectMessage(ctx context.Context, userID string) (string, error)

	// PostMessage posts msg to channelID as the bot and returns the message timestamp
	PostMessage(ctx context.Context, channelID string, msg *Message) (string, error)

	// SearchMessages runs a workspace message search with the search token.
	// Matches are returned in the ranking order of the search API.
	SearchMessages(ctx context.Context, query string) (model.SearchMatches, error)

	// GetReplyCount returns the reply count of the thread rooted at ts in channelID
	GetReplyCount(ctx context.Context, channelID, ts string) (model.ReplyCount, error)
}

// Message is an outgoing bot message
type Message struct {
	// Text is the message body, and the notification fallback when Blocks are set
	Text   string
	Blocks []slack.Block

	Username  string
	IconEmoji string

	// LinkNames makes Slack resolve mentions such as <@U123> in Text
	LinkNames bool
}

// Identity is the result of auth.test
type Identity struct {
	UserID string
	User   string
	TeamID string
	Team   string
	URL    string
}
