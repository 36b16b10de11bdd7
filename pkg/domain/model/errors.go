package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidEvent     = goerr.New("invalid inbound event")
	ErrInvalidRecord    = goerr.New("invalid onboarding record")
	ErrEmptyCommandList = goerr.New("command list is empty")
	ErrInvalidProfile   = goerr.New("invalid bot profile")
)

// Context keys for error values
const (
	EventTypeKey = "event_type"
	ChannelIDKey = "channel_id"
	UserIDKey    = "user_id"
)
