package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/domain/model"
	slacksvc "github.com/secmon-lab/janus/pkg/service/slack"
	"github.com/secmon-lab/janus/pkg/utils/logging"
)

// JanusUseCase reacts to Slack events: onboarding, text commands and question matching
type JanusUseCase struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	bot          model.BotProfile
	commands     model.CommandList
}

// NewJanusUseCase creates a new JanusUseCase instance
func NewJanusUseCase(repo interfaces.Repository, slackService slacksvc.Service, bot model.BotProfile, commands model.CommandList) *JanusUseCase {
	return &JanusUseCase{
		repo:         repo,
		slackService: slackService,
		bot:          bot,
		commands:     commands,
	}
}

// HandleEvent routes a validated inbound event to onboarding, a command or the question matcher
func (uc *JanusUseCase) HandleEvent(ctx context.Context, event model.InboundEvent) error {
	if uc.slackService == nil {
		return goerr.Wrap(ErrSlackNotConfigured, "cannot handle event")
	}

	switch ev := event.(type) {
	case *model.TeamJoinEvent:
		return uc.handleTeamJoin(ctx, ev)
	case *model.MessageEvent:
		return uc.handleMessage(ctx, ev)
	default:
		return goerr.Wrap(ErrUnknownEvent, "cannot route event", goerr.V("event", event))
	}
}

func (uc *JanusUseCase) handleTeamJoin(ctx context.Context, ev *model.TeamJoinEvent) error {
	channelID, err := uc.slackService.OpenDirectMessage(ctx, ev.UserID)
	if err != nil {
		return goerr.Wrap(err, "failed to open direct message for onboarding", goerr.V(model.UserIDKey, ev.UserID))
	}

	return uc.StartOnboarding(ctx, ev.UserID, channelID)
}

func (uc *JanusUseCase) handleMessage(ctx context.Context, ev *model.MessageEvent) error {
	logger := logging.From(ctx)

	if !ev.IsUserPost() {
		logger.Debug("ignore non-user message", "subtype", ev.SubType, "bot_id", ev.BotID)
		return nil
	}

	text := strings.ToLower(strings.TrimSpace(ev.Text))
	keyword := uc.bot.CommandKeyword()

	switch text {
	case keyword + " about":
		return uc.StartOnboarding(ctx, ev.UserID, ev.ChannelID)

	case keyword + " help":
		return uc.postHelp(ctx, ev.ChannelID)
	}

	if !model.IsQuestion(ev.Text) {
		return nil
	}

	return uc.HandleQuestion(ctx, ev.Text, ev.ChannelID, ev.UserID, ev.TimeStamp)
}

func (uc *JanusUseCase) postHelp(ctx context.Context, channelID string) error {
	if _, err := uc.slackService.PostMessage(ctx, channelID, uc.message(uc.commands.String())); err != nil {
		return goerr.Wrap(err, "failed to post command list", goerr.V(model.ChannelIDKey, channelID))
	}
	return nil
}

// message builds an outgoing message posted with the bot identity
func (uc *JanusUseCase) message(text string) *slacksvc.Message {
	return &slacksvc.Message{
		Text:      text,
		Username:  uc.bot.Name,
		IconEmoji: uc.bot.IconEmoji,
	}
}
