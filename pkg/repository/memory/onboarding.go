package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/domain/model"
)

type onboardingRepository struct {
	mu sync.RWMutex
	// channelID -> userID -> record
	records map[string]map[string]*model.OnboardingRecord
}

var _ interfaces.OnboardingRepository = &onboardingRepository{}

func newOnboardingRepository() *onboardingRepository {
	return &onboardingRepository{
		records: make(map[string]map[string]*model.OnboardingRecord),
	}
}

func (r *onboardingRepository) Put(ctx context.Context, record *model.OnboardingRecord) error {
	if err := record.Validate(); err != nil {
		return goerr.Wrap(err, "failed to put onboarding record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.records[record.ChannelID]
	if !ok {
		users = make(map[string]*model.OnboardingRecord)
		r.records[record.ChannelID] = users
	}

	// Store a copy so callers cannot mutate the stored record
	stored := *record
	users[record.UserID] = &stored

	return nil
}

func (r *onboardingRepository) Get(ctx context.Context, channelID, userID string) (*model.OnboardingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[channelID][userID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "onboarding record not found",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	result := *rec
	return &result, nil
}
