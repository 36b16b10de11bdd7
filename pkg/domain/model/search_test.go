package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/janus/pkg/domain/model"
)

func TestSearchMatches_Filter(t *testing.T) {
	bot := model.DefaultBotProfile()
	matches := model.SearchMatches{
		{Text: "How do I deploy?", Username: "JANUS", Permalink: "p0"},
		{Text: "deploy notes", Username: "bob", Permalink: "p1"},
		{Text: "how to deploy?", Username: "alice", Permalink: "p2"},
		{Text: "deploy to staging?", Username: "janus", Permalink: "p3"},
		{Text: "Is deploy broken?", Username: "carol", Permalink: "p4"},
	}

	filtered := matches.Filter(bot)
	gt.Array(t, filtered).Length(2).Required()
	gt.Value(t, filtered[0].Permalink).Equal("p2")
	gt.Value(t, filtered[1].Permalink).Equal("p4")

	for _, m := range filtered {
		gt.Bool(t, strings.HasSuffix(m.Text, "?")).True()
		gt.Bool(t, strings.EqualFold(m.Username, "janus")).False()
	}
}

func TestSearchMatches_FilterEmpty(t *testing.T) {
	filtered := model.SearchMatches{
		{Text: "no question here", Username: "alice"},
		{Text: "", Username: "bob"},
	}.Filter(model.DefaultBotProfile())

	gt.Array(t, filtered).Length(0)
	_, ok := filtered.Best()
	gt.Bool(t, ok).False()
}

func TestSearchMatches_FilterCustomName(t *testing.T) {
	bot := model.BotProfile{Name: "Oracle", IconEmoji: ":crystal_ball:"}
	filtered := model.SearchMatches{
		{Text: "a?", Username: "oracle", Permalink: "p0"},
		{Text: "b?", Username: "janus", Permalink: "p1"},
	}.Filter(bot)

	gt.Array(t, filtered).Length(1).Required()
	gt.Value(t, filtered[0].Permalink).Equal("p1")
}

func TestSearchMatches_Exclude(t *testing.T) {
	matches := model.SearchMatches{
		{ChannelID: "C1", TimeStamp: "1.0", Permalink: "self"},
		{ChannelID: "C2", TimeStamp: "1.0", Permalink: "other channel"},
		{ChannelID: "C1", TimeStamp: "2.0", Permalink: "older"},
	}

	t.Run("drops the identified message", func(t *testing.T) {
		got := matches.Exclude("C1", "1.0")
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].Permalink).Equal("other channel")
		gt.Value(t, got[1].Permalink).Equal("older")
	})

	t.Run("empty timestamp keeps everything", func(t *testing.T) {
		gt.Array(t, matches.Exclude("C1", "")).Length(3)
	})
}

func TestSearchMatches_Best(t *testing.T) {
	best, ok := model.SearchMatches{
		{Permalink: "first"},
		{Permalink: "second"},
	}.Best()
	gt.Bool(t, ok).True()
	gt.Value(t, best.Permalink).Equal("first")
}

func TestReplyCount_Sentence(t *testing.T) {
	testCases := []struct {
		name  string
		count int
		want  string
	}{
		{
			name:  "no replies",
			count: 0,
			want:  "This question has no replies so far, so you may choose to follow it for further replies.",
		},
		{
			name:  "single reply",
			count: 1,
			want:  "This question has 1 reply so far, which may provide further insight for your question.",
		},
		{
			name:  "several replies",
			count: 5,
			want:  "This question has 5 replies so far, which may provide further insight for your question.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, model.ReplyCountOf(tc.count).Sentence()).Equal(tc.want)
		})
	}
}

func TestReplyCountOf(t *testing.T) {
	gt.Bool(t, model.ReplyCountOf(0).Known).False()
	gt.Bool(t, model.ReplyCountOf(-1).Known).False()

	rc := model.ReplyCountOf(3)
	gt.Bool(t, rc.Known).True()
	gt.Number(t, rc.Count).Equal(3)
}

func TestMatchReply(t *testing.T) {
	best := model.SearchMatch{
		Text:      "How do I deploy to staging?",
		Username:  "alice",
		Permalink: "https://example.slack.com/archives/C1/p1",
	}

	msg := model.MatchReply("U123", "How do I deploy?", best, model.ReplyCountOf(5))

	gt.Value(t, msg).Equal("Hi <@U123>, a similar question was found for your question \"How do I deploy?\":\n" +
		"This question can be found here: https://example.slack.com/archives/C1/p1\n" +
		"This question has 5 replies so far, which may provide further insight for your question.")
}

func TestMatchReply_NoReplies(t *testing.T) {
	msg := model.MatchReply("U9", "why?", model.SearchMatch{Permalink: "https://x"}, model.ReplyCount{})

	gt.String(t, msg).Contains("<@U9>")
	gt.String(t, msg).Contains("https://x")
	gt.String(t, msg).Contains("no replies so far")
}
