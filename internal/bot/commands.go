package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

var wikiCommand = &discordgo.ApplicationCommand{
	Name:        "wiki",
	Description: "Search the Stardew Valley Wiki for a specific page.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "query",
			Description:  "What you want to search the Stardew Valley wiki for.",
			Required:     true,
			Autocomplete: true,
		},
	},
}

var statsCommand = &discordgo.ApplicationCommand{
	Name:        "farmstats",
	Description: "Show wiki lookup statistics for the last 24 hours.",
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case wikiCommand.Name:
			b.handleWiki(s, i)
		case statsCommand.Name:
			b.handleStats(s, i)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name == wikiCommand.Name {
			b.handleAutocomplete(s, i)
		}
	}
}

func (b *Bot) handleWiki(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	query := i.ApplicationCommandData().Options[0].StringValue()

	if !b.cooldown.Allow(userID) {
		respondEphemeral(s, i, "You're using that command too fast. Try again in a few seconds.")
		return
	}

	// lookups can take seconds on a cold cache; defer past the 3s window
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error("Failed to defer interaction", zap.Error(err))
		return
	}

	result, err := b.service.Lookup(context.Background(), query, userID)
	if err != nil {
		content := "Something went wrong looking that up. Please try again later."
		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
		return
	}

	embed := summaryEmbed(result.Summary)
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		logger.Error("Failed to send lookup response", zap.String("query", query), zap.Error(err))
	}
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.db == nil {
		respondEphemeral(s, i, "Lookup statistics are not available right now.")
		return
	}

	stats, err := b.db.GetStats(time.Now().Add(-24 * time.Hour))
	if err != nil {
		logger.Error("Failed to aggregate stats", zap.Error(err))
		respondEphemeral(s, i, "Lookup statistics are not available right now.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{statsEmbed(stats)},
		},
	})
	if err != nil {
		logger.Error("Failed to send stats response", zap.Error(err))
	}
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	current := i.ApplicationCommandData().Options[0].StringValue()

	titles := b.index.Suggest(current, 25)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(titles))
	for _, title := range titles {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  title,
			Value: title,
		})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Debug("Failed to send autocomplete choices", zap.Error(err))
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Debug("Failed to send ephemeral response", zap.Error(err))
	}
}
