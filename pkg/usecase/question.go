package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/secmon-lab/janus/pkg/utils/errutil"
	"github.com/secmon-lab/janus/pkg/utils/logging"
)

// HandleQuestion searches the workspace for a similar past question and, if one is found,
// posts a pointer to it in channelID. ts identifies the asking message so it is not matched
// against itself. Posts nothing when no candidate survives filtering.
func (uc *JanusUseCase) HandleQuestion(ctx context.Context, question, channelID, userID, ts string) error {
	if uc.slackService == nil {
		return goerr.Wrap(ErrSlackNotConfigured, "cannot handle question")
	}

	logger := logging.From(ctx)

	found, err := uc.slackService.SearchMessages(ctx, question)
	if err != nil {
		return goerr.Wrap(err, "failed to search similar questions", goerr.V(QuestionKey, question))
	}

	matches := found.Filter(uc.bot).Exclude(channelID, ts)
	best, ok := matches.Best()
	if !ok {
		logger.Debug("no similar question found", "question", question, "search_hits", len(found))
		return nil
	}

	replies, err := uc.slackService.GetReplyCount(ctx, best.ChannelID, best.TimeStamp)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to get reply count, assuming no replies",
			goerr.V(PermalinkKey, best.Permalink),
		), "reply count lookup failed")
		replies = model.ReplyCount{}
	}

	msg := uc.message(model.MatchReply(userID, question, best, replies))
	msg.LinkNames = true

	if _, err := uc.slackService.PostMessage(ctx, channelID, msg); err != nil {
		return goerr.Wrap(err, "failed to post similar question",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(PermalinkKey, best.Permalink),
		)
	}

	logger.Info("posted similar question",
		"channel_id", channelID,
		"user_id", userID,
		"permalink", best.Permalink,
		"replies", replies.Count,
	)

	return nil
}
