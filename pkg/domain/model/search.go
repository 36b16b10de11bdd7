package model

import (
	"fmt"
	"strings"
)

// SearchMatch is one message returned by the workspace search API
type SearchMatch struct {
	Text      string
	Username  string
	Permalink string
	ChannelID string
	TimeStamp string
}

// SearchMatches keeps the ranking order returned by search; the first element is the best match
type SearchMatches []SearchMatch

// Filter keeps matches that look like questions and were not posted by the bot itself.
// Order is preserved and nothing is re-ranked.
func (x SearchMatches) Filter(bot BotProfile) SearchMatches {
	filtered := make(SearchMatches, 0, len(x))
	for _, m := range x {
		if !IsQuestion(m.Text) {
			continue
		}
		if bot.IsSelf(m.Username) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// Exclude drops the message identified by channelID and ts, if present
func (x SearchMatches) Exclude(channelID, ts string) SearchMatches {
	if ts == "" {
		return x
	}
	filtered := make(SearchMatches, 0, len(x))
	for _, m := range x {
		if m.ChannelID == channelID && m.TimeStamp == ts {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

// Best returns the first match
func (x SearchMatches) Best() (SearchMatch, bool) {
	if len(x) == 0 {
		return SearchMatch{}, false
	}
	return x[0], true
}

// ReplyCount is the result of a thread reply lookup. Known is false when the parent message
// carries no reply_count field, which Slack omits for messages without a thread.
type ReplyCount struct {
	Count int
	Known bool
}

// ReplyCountOf builds a ReplyCount from the reply_count value of a parent message
func ReplyCountOf(n int) ReplyCount {
	if n <= 0 {
		return ReplyCount{}
	}
	return ReplyCount{Count: n, Known: true}
}

// Sentence describes the reply count for the match reply message
func (x ReplyCount) Sentence() string {
	if !x.Known {
		return "This question has no replies so far, so you may choose to follow it for further replies."
	}

	noun := "replies"
	if x.Count == 1 {
		noun = "reply"
	}
	return fmt.Sprintf("This question has %d %s so far, which may provide further insight for your question.", x.Count, noun)
}

// MatchReply composes the message pointing the asking user at a similar past question
func MatchReply(userID, question string, best SearchMatch, replies ReplyCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi <@%s>, a similar question was found for your question \"%s\":\n", userID, question)
	fmt.Fprintf(&b, "This question can be found here: %s\n", best.Permalink)
	b.WriteString(replies.Sentence())
	return b.String()
}
