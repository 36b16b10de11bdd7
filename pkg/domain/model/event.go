package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
)

// EventType identifies the subscribed Slack event kinds Janus reacts to
type EventType string

const (
	EventTypeTeamJoin EventType = "team_join"
	EventTypeMessage  EventType = "message"
)

// InboundEvent is a decoded and validated Slack event. Implemented only by
// *TeamJoinEvent and *MessageEvent.
type InboundEvent interface {
	Type() EventType
	Validate() error

	inboundEvent()
}

// TeamJoinEvent is delivered when a new member joins the workspace
type TeamJoinEvent struct {
	UserID string `validate:"required"`
}

func (e *TeamJoinEvent) Type() EventType { return EventTypeTeamJoin }
func (e *TeamJoinEvent) inboundEvent()   {}

// Validate checks the required fields of the event
func (e *TeamJoinEvent) Validate() error {
	if err := structValidator().Struct(e); err != nil {
		return goerr.Wrap(ErrInvalidEvent, err.Error(), goerr.V(EventTypeKey, e.Type()))
	}
	return nil
}

// MessageEvent is a message posted to a channel the bot can see
type MessageEvent struct {
	UserID    string
	ChannelID string `validate:"required"`
	Text      string
	TimeStamp string
	BotID     string
	SubType   string
}

func (e *MessageEvent) Type() EventType { return EventTypeMessage }
func (e *MessageEvent) inboundEvent()   {}

// Validate checks the required fields of the event. Bot posts and edits carry no user,
// so the user is only required for user posts.
func (e *MessageEvent) Validate() error {
	if err := structValidator().Struct(e); err != nil {
		return goerr.Wrap(ErrInvalidEvent, err.Error(),
			goerr.V(EventTypeKey, e.Type()),
			goerr.V(ChannelIDKey, e.ChannelID),
		)
	}
	if e.IsUserPost() && e.UserID == "" {
		return goerr.Wrap(ErrInvalidEvent, "user is required for user posts",
			goerr.V(EventTypeKey, e.Type()),
			goerr.V(ChannelIDKey, e.ChannelID),
		)
	}
	return nil
}

// IsUserPost reports whether the message was written by a human. Bot posts, edits and
// deletions report false; user subtypes such as file_share or me_message report true.
func (e *MessageEvent) IsUserPost() bool {
	if e.BotID != "" {
		return false
	}
	switch e.SubType {
	case "bot_message", "message_changed", "message_deleted", "message_replied":
		return false
	default:
		return true
	}
}

// NewInboundEvent converts a Slack Events API callback into an InboundEvent.
// It returns (nil, nil) for event kinds Janus does not subscribe to, and an error wrapping
// ErrInvalidEvent when a subscribed event lacks required fields.
func NewInboundEvent(ev *slackevents.EventsAPIEvent) (InboundEvent, error) {
	if ev == nil || ev.Type != slackevents.CallbackEvent {
		return nil, nil
	}

	var event InboundEvent
	switch data := ev.InnerEvent.Data.(type) {
	case *slackevents.TeamJoinEvent:
		e := &TeamJoinEvent{}
		if data.User != nil {
			e.UserID = data.User.ID
		}
		event = e

	case *slackevents.MessageEvent:
		event = &MessageEvent{
			UserID:    data.User,
			ChannelID: data.Channel,
			Text:      data.Text,
			TimeStamp: data.TimeStamp,
			BotID:     data.BotID,
			SubType:   data.SubType,
		}

	default:
		return nil, nil
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// IsQuestion reports whether text is treated as a question: non-empty and ending with "?".
// This trailing question mark heuristic is the only similarity signal; it does not look at
// meaning, so rhetorical questions match and questions without "?" do not.
func IsQuestion(text string) bool {
	return len(text) > 0 && strings.HasSuffix(text, "?")
}
