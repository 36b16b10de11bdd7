package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/domain/model"
)

type onboardingRepository struct {
	client    *goredis.Client
	keyPrefix string
}

var _ interfaces.OnboardingRepository = &onboardingRepository{}

func newOnboardingRepository(client *goredis.Client) *onboardingRepository {
	return &onboardingRepository{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
	}
}

// onboardingValue is the JSON stored in the per-channel hash, one field per user
type onboardingValue struct {
	MessageTS        string    `json:"message_ts"`
	ReactionTaskDone bool      `json:"reaction_task_done"`
	PinTaskDone      bool      `json:"pin_task_done"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// channelKey returns the hash key: {prefix}:onboarding:{channelID}
func (r *onboardingRepository) channelKey(channelID string) string {
	return r.keyPrefix + ":onboarding:" + channelID
}

func (r *onboardingRepository) Put(ctx context.Context, record *model.OnboardingRecord) error {
	if err := record.Validate(); err != nil {
		return goerr.Wrap(err, "failed to put onboarding record")
	}

	raw, err := json.Marshal(onboardingValue{
		MessageTS:        record.MessageTS,
		ReactionTaskDone: record.ReactionTaskDone,
		PinTaskDone:      record.PinTaskDone,
		UpdatedAt:        record.UpdatedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal onboarding record")
	}

	if err := r.client.HSet(ctx, r.channelKey(record.ChannelID), record.UserID, raw).Err(); err != nil {
		return goerr.Wrap(err, "failed to save onboarding record",
			goerr.V(model.ChannelIDKey, record.ChannelID),
			goerr.V(model.UserIDKey, record.UserID),
		)
	}

	return nil
}

func (r *onboardingRepository) Get(ctx context.Context, channelID, userID string) (*model.OnboardingRecord, error) {
	raw, err := r.client.HGet(ctx, r.channelKey(channelID), userID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "onboarding record not found",
				goerr.V(model.ChannelIDKey, channelID),
				goerr.V(model.UserIDKey, userID),
			)
		}
		return nil, goerr.Wrap(err, "failed to get onboarding record",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	var v onboardingValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal onboarding record",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	return &model.OnboardingRecord{
		ChannelID:        channelID,
		UserID:           userID,
		MessageTS:        v.MessageTS,
		ReactionTaskDone: v.ReactionTaskDone,
		PinTaskDone:      v.PinTaskDone,
		UpdatedAt:        v.UpdatedAt,
	}, nil
}
