// Package slack posts run reports to a Slack channel.
package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/roadmapper/internal/notify"
)

// slackClient abstracts the Slack API method we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Opts holds parameters for creating a Notifier.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// Notifier implements notify.Notifier for Slack.
type Notifier struct {
	client    slackClient
	channelID string
}

// New creates a Slack Notifier.
func New(opts Opts) (*Notifier, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}
	n := &Notifier{client: opts.Client, channelID: opts.ChannelID}
	if n.client == nil {
		n.client = slackapi.New(opts.BotToken)
	}
	return n, nil
}

// Notify posts r as a single attachment.
func (n *Notifier) Notify(ctx context.Context, r notify.Report) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channelID, buildMessageOptions(r)...)
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

func buildMessageOptions(r notify.Report) []slackapi.MsgOption {
	att := slackapi.Attachment{
		Title:    r.Title,
		Text:     r.Body,
		Color:    r.Color,
		Fallback: r.Title,
	}
	for _, f := range r.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return []slackapi.MsgOption{
		slackapi.MsgOptionText(r.Title, false),
		slackapi.MsgOptionAttachments(att),
	}
}
