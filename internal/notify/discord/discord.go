// Package discord posts run reports to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/roadmapper/internal/notify"
)

// session abstracts the discordgo method we use, enabling test mocks.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Opts holds parameters for creating a Notifier.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// Notifier implements notify.Notifier for Discord. It uses the REST API
// only and never opens a gateway connection.
type Notifier struct {
	sess      session
	channelID string
}

// New creates a Discord Notifier.
func New(opts Opts) (*Notifier, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}
	n := &Notifier{sess: opts.Session, channelID: opts.ChannelID}
	if n.sess == nil {
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		n.sess = s
	}
	return n, nil
}

// Notify posts r as a single embed.
func (n *Notifier) Notify(ctx context.Context, r notify.Report) error {
	_, err := n.sess.ChannelMessageSendEmbed(n.channelID, reportToEmbed(r), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

func reportToEmbed(r notify.Report) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Body,
	}
	if r.Color != "" {
		embed.Color = parseHexColor(r.Color)
	}
	for _, f := range r.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Short,
		})
	}
	return embed
}

// parseHexColor converts "#36a64f" to an int. Invalid input yields 0.
func parseHexColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
