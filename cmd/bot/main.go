package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gkhcrm/gkhcrm/internal/apiclient"
	"github.com/gkhcrm/gkhcrm/internal/bot"
	"github.com/gkhcrm/gkhcrm/internal/bot/session"
	"github.com/gkhcrm/gkhcrm/internal/config"
	"github.com/gkhcrm/gkhcrm/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if cfg.Bot.Token == "" {
		log.Fatal().Msg("BOT_TOKEN is not set")
	}

	log.Info().
		Str("api_url", cfg.Bot.APIBaseURL).
		Str("web_url", cfg.Bot.WebBaseURL).
		Msg("Starting ЖКХ CRM Telegram bot")

	client := apiclient.New(cfg.Bot.APIBaseURL, cfg.Bot.RequestTimeout)
	sessions := session.NewStore()
	engine := bot.NewEngine(client, sessions, cfg.Bot.WebBaseURL, log.Logger)

	b, err := bot.NewBot(cfg.Bot, engine, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}

	log.Info().Str("username", b.Username()).Msg("Bot authorized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}

	log.Info().Msg("Bot stopped")
}
