package interfaces

import (
	"context"

	"github.com/secmon-lab/janus/pkg/domain/model"
)

// OnboardingRepository stores the onboarding message sent to each new member
type OnboardingRepository interface {
	// Put saves the record keyed by channel and user (upsert)
	Put(ctx context.Context, record *model.OnboardingRecord) error

	// Get returns the record for the channel and user. Returns an error wrapping ErrNotFound if absent.
	Get(ctx context.Context, channelID, userID string) (*model.OnboardingRecord, error)
}
