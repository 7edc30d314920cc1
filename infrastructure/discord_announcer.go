package infrastructure

import (
	"context"
	"fmt"
	"time"

	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Embed colors
const (
	colorLineSet      = 0x5865F2
	colorLineResolved = 0x57F287
)

// channelMessenger is the part of *discordgo.Session the announcer uses
type channelMessenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts line updates and resolutions to a Discord channel
type DiscordAnnouncer struct {
	session   channelMessenger
	channelID string
}

// NewDiscordAnnouncer creates a REST-only Discord session for announcements
func NewDiscordAnnouncer(token, channelID string) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	return newDiscordAnnouncer(session, channelID), nil
}

func newDiscordAnnouncer(session channelMessenger, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}
}

// HandleEvent posts an embed for line events and ignores the rest
func (a *DiscordAnnouncer) HandleEvent(ctx context.Context, event events.Event) error {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.DailyLineUpdatedEvent:
		embed = lineSetEmbed(e.Line)
	case events.LineResolvedEvent:
		embed = lineResolvedEmbed(e)
	default:
		return nil
	}

	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("failed to post %s announcement: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"channelID": a.channelID,
		"eventType": event.Type(),
	}).Info("Posted Discord announcement")
	return nil
}

func lineSetEmbed(line entities.DailyLine) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Daily line for %s", line.Date),
		Description: line.Question,
		Color:       colorLineSet,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "YES", Value: line.YesOdds, Inline: true},
			{Name: "NO", Value: line.NoOdds, Inline: true},
			{Name: "Betting closes", Value: fmt.Sprintf("<t:%d:R>", line.CutoffTime.Unix()), Inline: false},
		},
	}
}

func lineResolvedEmbed(e events.LineResolvedEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s resolved: %s wins", e.Line.Date, e.WinningSide),
		Description: e.Line.Question,
		Color:       colorLineResolved,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Multiplier", Value: e.Multiplier.StringFixed(2) + "x", Inline: true},
			{Name: "Winners paid", Value: fmt.Sprintf("%d", e.WinnersCredited), Inline: true},
			{Name: "Total paid", Value: e.TotalPaid.String() + " ETH", Inline: true},
		},
	}
	if e.FailedCredits > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d payouts failed and need attention", e.FailedCredits),
		}
	}
	return embed
}
