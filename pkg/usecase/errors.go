package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrSlackNotConfigured = errors.New("slack service is not configured")
	ErrUnknownEvent       = errors.New("unknown inbound event")
)

// Context keys for error values
const (
	QuestionKey  = "question"
	PermalinkKey = "permalink"
)
