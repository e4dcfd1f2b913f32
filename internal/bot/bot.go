package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/lookup"
	"github.com/Ken-Miles/farm-computer/internal/middleware/ratelimit"
	"github.com/Ken-Miles/farm-computer/internal/storage/sqlite"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
	"github.com/Ken-Miles/farm-computer/pkg/config"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

// Bot is the Discord surface: the /wiki command with autocomplete, backed
// by the lookup pipeline and the page index.
type Bot struct {
	session  *discordgo.Session
	service  *lookup.Service
	index    *wiki.PageIndex
	db       *sqlite.Client
	cooldown *ratelimit.Limiter
	appID    string
	guildIDs []string
}

func New(cfg config.DiscordConfig, service *lookup.Service, index *wiki.PageIndex, db *sqlite.Client, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session: session,
		service: service,
		index:   index,
		db:      db,
		cooldown: ratelimit.New(ratelimit.Config{
			MaxRequests: cfg.CooldownPerUser,
			Window:      time.Duration(cfg.CooldownWindow) * time.Second,
			Logger:      log,
		}),
		appID:    cfg.AppID,
		guildIDs: cfg.GuildIDs,
	}

	session.AddHandler(b.onInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Discord session ready", zap.String("user", r.User.String()))
	})

	return b, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}

	b.session.UpdateWatchStatus(0, "Pelican Town")
	return nil
}

func (b *Bot) Stop() error {
	b.cooldown.Stop()
	return b.session.Close()
}

// registerCommands registers per-guild when guild ids are configured (fast
// propagation during development), globally otherwise.
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{wikiCommand, statsCommand}

	if len(b.guildIDs) == 0 {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(b.appID, "", cmd); err != nil {
				return fmt.Errorf("failed to register global command %s: %w", cmd.Name, err)
			}
		}
		return nil
	}

	for _, guildID := range b.guildIDs {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(b.appID, guildID, cmd); err != nil {
				return fmt.Errorf("failed to register command %s for guild %s: %w", cmd.Name, guildID, err)
			}
		}
	}
	return nil
}
