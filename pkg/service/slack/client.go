package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const (
	// DefaultCacheTTL is the default TTL for direct message channel cache
	DefaultCacheTTL = 10 * time.Minute
	// DefaultSearchRatePerMinute keeps search.messages under its Tier 2 limit
	DefaultSearchRatePerMinute = 20
	// DefaultSearchCount is the number of matches requested per search
	DefaultSearchCount = 20
)

// cacheEntry holds a cached direct message channel ID with expiration
type cacheEntry struct {
	channelID string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api    *slack.Client
	search *slack.Client

	apiOptions []slack.Option

	cacheTTL    time.Duration
	searchCount int
	limiter     *rate.Limiter

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for direct message channel cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithSearchRateLimit limits search.messages calls per minute. Zero or less disables the limit.
func WithSearchRateLimit(perMinute int) Option {
	return func(c *client) {
		c.limiter = newSearchLimiter(perMinute)
	}
}

// WithSearchCount sets the number of matches requested per search
func WithSearchCount(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.searchCount = n
		}
	}
}

// withAPIURL points both API clients at another endpoint. Must end with "/".
func withAPIURL(url string) Option {
	return func(c *client) {
		c.apiOptions = append(c.apiOptions, slack.OptionAPIURL(url))
	}
}

func newSearchLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// New creates a new Slack service. botToken (xoxb-) is used for posting, searchToken (xoxp-)
// for search.messages, which bot tokens cannot call, and for thread lookups.
func New(botToken, searchToken string, opts ...Option) (Service, error) {
	if botToken == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if searchToken == "" {
		return nil, goerr.New("Slack search token is required")
	}

	c := &client{
		cacheTTL:    DefaultCacheTTL,
		searchCount: DefaultSearchCount,
		limiter:     newSearchLimiter(DefaultSearchRatePerMinute),
		cache:       make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.api = slack.New(botToken, c.apiOptions...)
	c.search = slack.New(searchToken, c.apiOptions...)

	return c, nil
}

func toIdentity(resp *slack.AuthTestResponse) *Identity {
	return &Identity{
		UserID: resp.UserID,
		User:   resp.User,
		TeamID: resp.TeamID,
		Team:   resp.Team,
		URL:    resp.URL,
	}
}

// AuthTest verifies the bot token
func (c *client) AuthTest(ctx context.Context) (*Identity, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify Slack bot token")
	}
	return toIdentity(resp), nil
}

// SearchAuthTest verifies the search token
func (c *client) SearchAuthTest(ctx context.Context) (*Identity, error) {
	resp, err := c.search.AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify Slack search token")
	}
	return toIdentity(resp), nil
}

// OpenDirectMessage opens the direct message channel with userID, with caching
func (c *client) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.channelID, nil
	}

	ch, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to open direct message", goerr.V(model.UserIDKey, userID))
	}

	c.mu.Lock()
	c.cache[userID] = cacheEntry{
		channelID: ch.ID,
		expiresAt: now.Add(c.cacheTTL),
	}
	c.mu.Unlock()

	return ch.ID, nil
}

// PostMessage posts msg to channelID and returns the message timestamp
func (c *client) PostMessage(ctx context.Context, channelID string, msg *Message) (string, error) {
	params := slack.NewPostMessageParameters()
	params.Username = msg.Username
	params.IconEmoji = msg.IconEmoji
	if msg.LinkNames {
		params.LinkNames = 1
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionPostMessageParameters(params),
	}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V(model.ChannelIDKey, channelID))
	}

	return ts, nil
}

// SearchMessages searches workspace messages, waiting for the rate limiter first
func (c *client) SearchMessages(ctx context.Context, query string) (model.SearchMatches, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "search rate limiter wait aborted")
	}

	params := slack.NewSearchParameters()
	params.Count = c.searchCount

	resp, err := c.search.SearchMessagesContext(ctx, query, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search messages", goerr.V("query", query))
	}

	matches := make(model.SearchMatches, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, model.SearchMatch{
			Text:      m.Text,
			Username:  m.Username,
			Permalink: m.Permalink,
			ChannelID: m.Channel.ID,
			TimeStamp: m.Timestamp,
		})
	}

	return matches, nil
}

// GetReplyCount reads reply_count from the parent message of the thread. The search token is
// used so threads in channels the bot has not joined can be read.
func (c *client) GetReplyCount(ctx context.Context, channelID, ts string) (model.ReplyCount, error) {
	msgs, _, _, err := c.search.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: ts,
		Limit:     1,
	})
	if err != nil {
		return model.ReplyCount{}, goerr.Wrap(err, "failed to get conversation replies",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V("ts", ts),
		)
	}
	if len(msgs) == 0 {
		return model.ReplyCount{}, nil
	}

	return model.ReplyCountOf(msgs[0].ReplyCount), nil
}
