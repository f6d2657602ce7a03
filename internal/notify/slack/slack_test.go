package slack

import (
	"context"
	"errors"
	"strings"
	"testing"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/roadmapper/internal/notify"
)

type mockSlackClient struct {
	channel string
	options []slackapi.MsgOption
	err     error
}

func (m *mockSlackClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channel = channelID
	m.options = options
	return channelID, "1700000000.000100", m.err
}

func TestNew_RequiresTokenAndChannel(t *testing.T) {
	if _, err := New(Opts{ChannelID: "C1"}); err == nil {
		t.Error("expected error without bot token")
	}
	if _, err := New(Opts{BotToken: "xoxb-1"}); err == nil {
		t.Error("expected error without channel")
	}
	if _, err := New(Opts{BotToken: "xoxb-1", ChannelID: "C1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNotify_PostsAttachment(t *testing.T) {
	mc := &mockSlackClient{}
	n, err := New(Opts{ChannelID: "C123", Client: mc})
	if err != nil {
		t.Fatal(err)
	}

	r := notify.Report{
		Title:  "Roadmap provisioning succeeded",
		Color:  notify.ColorSuccess,
		Fields: []notify.Field{{Name: "Created", Value: "38", Short: true}},
	}
	if err := n.Notify(context.Background(), r); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if mc.channel != "C123" {
		t.Errorf("channel = %q, want C123", mc.channel)
	}

	_, values, err := slackapi.UnsafeApplyMsgOptions("xoxb-test", mc.channel, "https://slack.com/api/", mc.options...)
	if err != nil {
		t.Fatal(err)
	}
	if got := values.Get("text"); got != r.Title {
		t.Errorf("text = %q, want %q", got, r.Title)
	}
	atts := values.Get("attachments")
	for _, want := range []string{`"color":"#36a64f"`, `"title":"Created"`, `"value":"38"`} {
		if !strings.Contains(atts, want) {
			t.Errorf("attachments missing %s: %s", want, atts)
		}
	}
}

func TestNotify_WrapsError(t *testing.T) {
	mc := &mockSlackClient{err: errors.New("channel_not_found")}
	n, _ := New(Opts{ChannelID: "C1", Client: mc})

	err := n.Notify(context.Background(), notify.Report{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "slack: post message: channel_not_found") {
		t.Errorf("err = %v", err)
	}
}
