package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/secmon-lab/janus/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	onboardingMissionText = "*Background:*\n" +
		"With so many places having moved to online environments, Slack has become a great way " +
		"for peers and colleagues to communicate, especially for asking questions and receiving " +
		"help. Unfortunately, not everyone is always online to help other users. This can be " +
		"especially troublesome for questions that get asked over and over, but receive no answers " +
		"for a while.\n\n" +
		"*Mission:*\n" +
		"Janus aims to cut down on wait time for answers by determining if the question has been " +
		"asked before in the workspace, see if there are replies to the question, then deliver that " +
		"information to the user straight away. Through these means, Janus ensures that those who " +
		"have questions which have already been answered before but do not know due to lack of time " +
		"and communication will be helped."

	onboardingDevelopmentText = "*Progress in Development:*\n" +
		"Currently, basic functionalities of what Janus aims to do have been implemented, though " +
		"the methods of implementation plan to be improved on in the future. Right now, Janus " +
		"utilizes the searching feature of the Slack Web API to find matching questions and a " +
		"naive method of determining whether a message is a question. In the future, Janus plans " +
		"to:\n\n" +
		"• determine matches between questions through semantic similarity " +
		"(meaning of a sentence rather than the structure of a sentence).\n" +
		"• improve the method of choosing the best matching question. One idea is to score " +
		"questions, choose a group of matching questions if they pass a certain threshold, " +
		"and choose the question with the most replies.\n" +
		"• implement a feedback system to keep track of how useful Janus currently is to users " +
		"and make improvements to the bot."

	onboardingNameText = "*Why am I named Janus?*\n" +
		"Janus is the name of the Roman god of beginnings, ends, doorways, and duality. Janus " +
		"has two faces: one that looks into the past, and one that looks into the future. In " +
		"this context, Janus the bot looks into past questions and uses them to help answer " +
		"similar ones in the future. Also the name Janus is cool.\n\n" +
		"You can read more about Janus the Roman god *<https://en.wikipedia.org/wiki/Janus|here>*."
)

func onboardingWelcomeText(bot model.BotProfile) string {
	return fmt.Sprintf("Greetings, mortal. I am %s, the all-knowing observer bot. :eye-in-speech-bubble:\n\n"+
		"To get started, type \"%s help\" for a list of my commands.\n\n"+
		"*Learn more about me below:*", bot.Name, bot.CommandKeyword())
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

// OnboardingBlocks builds the onboarding message: four sections (welcome, mission,
// development progress, name) separated by dividers
func OnboardingBlocks(bot model.BotProfile) []slack.Block {
	return []slack.Block{
		markdownSection(onboardingWelcomeText(bot)),
		slack.NewDividerBlock(),
		markdownSection(onboardingMissionText),
		slack.NewDividerBlock(),
		markdownSection(onboardingDevelopmentText),
		slack.NewDividerBlock(),
		markdownSection(onboardingNameText),
	}
}

// StartOnboarding posts the onboarding message to channelID and remembers it for userID.
// No record is stored when posting fails.
func (uc *JanusUseCase) StartOnboarding(ctx context.Context, userID, channelID string) error {
	if uc.slackService == nil {
		return goerr.Wrap(ErrSlackNotConfigured, "cannot start onboarding")
	}

	msg := uc.message(fmt.Sprintf("Welcome! I am %s.", uc.bot.Name))
	msg.Blocks = OnboardingBlocks(uc.bot)

	ts, err := uc.slackService.PostMessage(ctx, channelID, msg)
	if err != nil {
		return goerr.Wrap(err, "failed to post onboarding message",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	record := model.NewOnboardingRecord(channelID, userID, ts)
	if err := uc.repo.Onboarding().Put(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to save onboarding record",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	logging.From(ctx).Info("onboarding message sent",
		"channel_id", channelID,
		"user_id", userID,
		"ts", ts,
	)

	return nil
}
