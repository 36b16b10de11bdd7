package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// OnboardingRecord remembers the onboarding message sent to a user in a channel.
// Keyed by ChannelID then UserID; a repeated onboarding overwrites the record.
type OnboardingRecord struct {
	ChannelID string `validate:"required"`
	UserID    string `validate:"required"`
	MessageTS string `validate:"required"`

	// Task flags are kept for future message updates and start as false
	ReactionTaskDone bool
	PinTaskDone      bool

	UpdatedAt time.Time
}

// NewOnboardingRecord creates a record for a successfully posted onboarding message
func NewOnboardingRecord(channelID, userID, messageTS string) *OnboardingRecord {
	return &OnboardingRecord{
		ChannelID: channelID,
		UserID:    userID,
		MessageTS: messageTS,
		UpdatedAt: time.Now().UTC(),
	}
}

// Validate checks the key fields and the message timestamp
func (r *OnboardingRecord) Validate() error {
	if r == nil {
		return goerr.Wrap(ErrInvalidRecord, "record is nil")
	}
	if err := structValidator().Struct(r); err != nil {
		return goerr.Wrap(ErrInvalidRecord, err.Error(),
			goerr.V(ChannelIDKey, r.ChannelID),
			goerr.V(UserIDKey, r.UserID),
		)
	}
	return nil
}
