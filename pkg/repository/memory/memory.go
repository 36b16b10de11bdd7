package memory

import (
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
)

type Memory struct {
	onboarding *onboardingRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		onboarding: newOnboardingRepository(),
	}
}

func (m *Memory) Onboarding() interfaces.OnboardingRepository {
	return m.onboarding
}

func (m *Memory) Close() error {
	return nil
}
