package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/janus/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when bot token is empty", func(t *testing.T) {
		_, err := slack.New("", "xoxp-search")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when search token is empty", func(t *testing.T) {
		_, err := slack.New("xoxb-bot", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when tokens are provided", func(t *testing.T) {
		svc, err := slack.New("xoxb-bot", "xoxp-search")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

// stubAPI is a minimal Slack Web API recording the requests it receives
type stubAPI struct {
	mu       sync.Mutex
	requests map[string][]url.Values
	tokens   map[string][]string

	openCalls atomic.Int32
	replies   string
}

func newStubAPI(t *testing.T) (*stubAPI, *httptest.Server) {
	t.Helper()

	stub := &stubAPI{
		requests: make(map[string][]url.Values),
		tokens:   make(map[string][]string),
		replies:  `{"ok":true,"has_more":false,"messages":[{"type":"message","ts":"1.0","reply_count":3}]}`,
	}

	mux := http.NewServeMux()
	handle := func(method, body string) {
		mux.HandleFunc("/"+method, func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, r.ParseForm())
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				token = r.FormValue("token")
			}

			stub.mu.Lock()
			stub.requests[method] = append(stub.requests[method], r.Form)
			stub.tokens[method] = append(stub.tokens[method], token)
			respBody := body
			if method == "conversations.replies" {
				respBody = stub.replies
			}
			stub.mu.Unlock()

			if method == "conversations.open" {
				stub.openCalls.Add(1)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(respBody))
		})
	}

	handle("auth.test", `{"ok":true,"url":"https://example.slack.com/","team":"Example","user":"janus","team_id":"T001","user_id":"U0BOT"}`)
	handle("conversations.open", `{"ok":true,"channel":{"id":"D123"}}`)
	handle("chat.postMessage", `{"ok":true,"channel":"D123","ts":"1700000000.000100"}`)
	handle("conversations.replies", "")
	handle("search.messages", `{"ok":true,"query":"q","messages":{"total":2,"matches":[
		{"type":"message","text":"How do I deploy?","username":"alice","permalink":"https://example.slack.com/archives/C1/p1","ts":"1.0","channel":{"id":"C1","name":"general"}},
		{"type":"message","text":"deploy notes","username":"bob","permalink":"https://example.slack.com/archives/C2/p2","ts":"2.0","channel":{"id":"C2","name":"random"}}
	]}}`)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *stubAPI) last(method string) (url.Values, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.requests[method]
	if len(reqs) == 0 {
		return nil, ""
	}
	return reqs[len(reqs)-1], s.tokens[method][len(reqs)-1]
}

func newStubService(t *testing.T, opts ...slack.Option) (slack.Service, *stubAPI) {
	t.Helper()
	stub, srv := newStubAPI(t)
	opts = append([]slack.Option{slack.WithAPIURL(srv.URL + "/")}, opts...)
	svc, err := slack.New("xoxb-bot", "xoxp-search", opts...)
	gt.NoError(t, err).Required()
	return svc, stub
}

func TestClient_AuthTest(t *testing.T) {
	svc, stub := newStubService(t)
	ctx := context.Background()

	id, err := svc.AuthTest(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, id.UserID).Equal("U0BOT")
	gt.Value(t, id.TeamID).Equal("T001")
	_, token := stub.last("auth.test")
	gt.Value(t, token).Equal("xoxb-bot")

	_, err = svc.SearchAuthTest(ctx)
	gt.NoError(t, err).Required()
	_, token = stub.last("auth.test")
	gt.Value(t, token).Equal("xoxp-search")
}

func TestClient_OpenDirectMessage(t *testing.T) {
	t.Run("caches channel per user", func(t *testing.T) {
		svc, stub := newStubService(t)
		ctx := context.Background()

		ch, err := svc.OpenDirectMessage(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, ch).Equal("D123")

		form, _ := stub.last("conversations.open")
		gt.Value(t, form.Get("users")).Equal("U001")

		ch, err = svc.OpenDirectMessage(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, ch).Equal("D123")
		gt.Value(t, stub.openCalls.Load()).Equal(int32(1))
	})

	t.Run("expired cache entries are refreshed", func(t *testing.T) {
		svc, stub := newStubService(t, slack.WithCacheTTL(-time.Second))
		ctx := context.Background()

		_, err := svc.OpenDirectMessage(ctx, "U001")
		gt.NoError(t, err).Required()
		_, err = svc.OpenDirectMessage(ctx, "U001")
		gt.NoError(t, err).Required()
		gt.Value(t, stub.openCalls.Load()).Equal(int32(2))
	})
}

func TestClient_PostMessage(t *testing.T) {
	t.Run("posts text with identity and link names", func(t *testing.T) {
		svc, stub := newStubService(t)

		ts, err := svc.PostMessage(context.Background(), "C123", &slack.Message{
			Text:      "Hi <@U123>",
			Username:  "Janus",
			IconEmoji: ":robot_face:",
			LinkNames: true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, ts).Equal("1700000000.000100")

		form, token := stub.last("chat.postMessage")
		gt.Value(t, token).Equal("xoxb-bot")
		gt.Value(t, form.Get("channel")).Equal("C123")
		gt.Value(t, form.Get("text")).Equal("Hi <@U123>")
		gt.Value(t, form.Get("username")).Equal("Janus")
		gt.Value(t, form.Get("icon_emoji")).Equal(":robot_face:")
		gt.Value(t, form.Get("link_names")).Equal("1")
		gt.Value(t, form.Get("blocks")).Equal("")
	})

	t.Run("posts blocks", func(t *testing.T) {
		svc, stub := newStubService(t)

		blocks := []goslack.Block{
			goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, "*hello*", false, false), nil, nil),
			goslack.NewDividerBlock(),
		}
		_, err := svc.PostMessage(context.Background(), "D123", &slack.Message{Text: "hello", Blocks: blocks})
		gt.NoError(t, err).Required()

		form, _ := stub.last("chat.postMessage")
		var decoded []map[string]any
		gt.NoError(t, json.Unmarshal([]byte(form.Get("blocks")), &decoded)).Required()
		gt.Array(t, decoded).Length(2).Required()
		gt.Value(t, decoded[0]["type"]).Equal("section")
		gt.Value(t, decoded[1]["type"]).Equal("divider")
		gt.Value(t, form.Get("link_names")).Equal("")
	})
}

func TestClient_SearchMessages(t *testing.T) {
	t.Run("maps matches in order with search token", func(t *testing.T) {
		svc, stub := newStubService(t, slack.WithSearchCount(5))

		matches, err := svc.SearchMessages(context.Background(), "How do I deploy?")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2).Required()
		gt.Value(t, matches[0].Text).Equal("How do I deploy?")
		gt.Value(t, matches[0].Username).Equal("alice")
		gt.Value(t, matches[0].Permalink).Equal("https://example.slack.com/archives/C1/p1")
		gt.Value(t, matches[0].ChannelID).Equal("C1")
		gt.Value(t, matches[0].TimeStamp).Equal("1.0")
		gt.Value(t, matches[1].Username).Equal("bob")

		form, token := stub.last("search.messages")
		gt.Value(t, token).Equal("xoxp-search")
		gt.Value(t, form.Get("query")).Equal("How do I deploy?")
		gt.Value(t, form.Get("count")).Equal("5")
	})

	t.Run("rate limiter aborts when context expires", func(t *testing.T) {
		svc, _ := newStubService(t, slack.WithSearchRateLimit(1))

		_, err := svc.SearchMessages(context.Background(), "first?")
		gt.NoError(t, err).Required()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = svc.SearchMessages(ctx, "second?")
		gt.Value(t, err).NotNil()
	})

	t.Run("disabled rate limit does not block", func(t *testing.T) {
		svc, _ := newStubService(t, slack.WithSearchRateLimit(0))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for range 3 {
			_, err := svc.SearchMessages(ctx, "q?")
			gt.NoError(t, err).Required()
		}
	})
}

func TestClient_GetReplyCount(t *testing.T) {
	t.Run("reads reply_count of parent message", func(t *testing.T) {
		svc, stub := newStubService(t)

		rc, err := svc.GetReplyCount(context.Background(), "C1", "1.0")
		gt.NoError(t, err).Required()
		gt.Bool(t, rc.Known).True()
		gt.Number(t, rc.Count).Equal(3)

		form, token := stub.last("conversations.replies")
		gt.Value(t, token).Equal("xoxp-search")
		gt.Value(t, form.Get("channel")).Equal("C1")
		gt.Value(t, form.Get("ts")).Equal("1.0")
	})

	t.Run("missing reply_count means no replies", func(t *testing.T) {
		svc, stub := newStubService(t)
		stub.mu.Lock()
		stub.replies = `{"ok":true,"messages":[{"type":"message","ts":"1.0"}]}`
		stub.mu.Unlock()

		rc, err := svc.GetReplyCount(context.Background(), "C1", "1.0")
		gt.NoError(t, err).Required()
		gt.Bool(t, rc.Known).False()
	})

	t.Run("API error is returned", func(t *testing.T) {
		svc, stub := newStubService(t)
		stub.mu.Lock()
		stub.replies = `{"ok":false,"error":"thread_not_found"}`
		stub.mu.Unlock()

		_, err := svc.GetReplyCount(context.Background(), "C1", "1.0")
		gt.Value(t, err).NotNil()
	})
}

func TestIntegration(t *testing.T) {
	botToken := os.Getenv("TEST_SLACK_BOT_TOKEN")
	if botToken == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN is not set")
	}
	searchToken := os.Getenv("TEST_SLACK_SEARCH_TOKEN")
	if searchToken == "" {
		t.Skip("TEST_SLACK_SEARCH_TOKEN is not set")
	}

	ctx := context.Background()

	svc, err := slack.New(botToken, searchToken)
	gt.NoError(t, err).Required()

	t.Run("AuthTest returns bot identity", func(t *testing.T) {
		id, err := svc.AuthTest(ctx)
		gt.NoError(t, err).Required()
		gt.String(t, id.UserID).NotEqual("")
		t.Logf("Bot user: %s (%s)", id.User, id.UserID)
	})

	t.Run("SearchMessages returns matches", func(t *testing.T) {
		matches, err := svc.SearchMessages(ctx, "?")
		gt.NoError(t, err).Required()
		if len(matches) == 0 {
			t.Log("Warning: search returned no matches")
		}
		for _, m := range matches {
			gt.String(t, m.Permalink).NotEqual("")
		}
	})
}
