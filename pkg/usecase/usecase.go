package usecase

import (
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/domain/model"
	slacksvc "github.com/secmon-lab/janus/pkg/service/slack"
)

type UseCases struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	bot          model.BotProfile
	commands     model.CommandList
	Janus        *JanusUseCase
}

type Option func(*UseCases)

func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

func WithBotProfile(bot model.BotProfile) Option {
	return func(uc *UseCases) {
		uc.bot = bot
	}
}

func WithCommandList(commands model.CommandList) Option {
	return func(uc *UseCases) {
		uc.commands = commands
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		bot:  model.DefaultBotProfile(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Janus = NewJanusUseCase(repo, uc.slackService, uc.bot, uc.commands)

	return uc
}
