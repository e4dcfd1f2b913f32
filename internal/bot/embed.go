package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Ken-Miles/farm-computer/internal/storage/models"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
)

const embedColor = 0xE67E22 // orange

// Discord embed limits
const (
	maxFields      = 25
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxDescription = 4096
)

// summaryEmbed renders a structured summary as a Discord embed. Infobox
// fields and descriptions are truncated to the platform limits rather than
// rejected.
func summaryEmbed(summary *wiki.Summary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       summary.Title,
		URL:         summary.SourceURL,
		Description: truncate(summary.Description, maxDescription),
		Color:       embedColor,
	}

	if summary.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: summary.ThumbnailURL}
	}
	if summary.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: summary.ImageURL}
	}

	for _, field := range summary.Fields {
		if len(embed.Fields) >= maxFields {
			break
		}
		if field.Name == "" || field.Value == "" {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(field.Name, maxFieldName),
			Value:  truncate(field.Value, maxFieldValue),
			Inline: field.Inline,
		})
	}

	return embed
}

func statsEmbed(stats *models.LookupStats) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Lookup statistics (last 24 hours)",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total lookups", Value: fmt.Sprintf("%d", stats.TotalLookups), Inline: true},
			{Name: "Not found", Value: fmt.Sprintf("%d", stats.NotFound), Inline: true},
			{Name: "Cache hits", Value: fmt.Sprintf("%d", stats.CacheHits), Inline: true},
			{Name: "Avg latency", Value: fmt.Sprintf("%.0f ms", stats.AvgLatencyMS), Inline: true},
		},
	}

	if len(stats.TopQueries) > 0 {
		lines := make([]string, 0, len(stats.TopQueries))
		for _, qc := range stats.TopQueries {
			lines = append(lines, fmt.Sprintf("%s (%d)", qc.Query, qc.Count))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Top queries",
			Value: truncate(strings.Join(lines, "\n"), maxFieldValue),
		})
	}

	return embed
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && len(string(r)) > max-3 {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
