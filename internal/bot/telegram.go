package bot

import (
	"context"

	"github.com/gkhcrm/gkhcrm/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot runs the Telegram long-polling loop and forwards updates to the
// conversation engine.
type Bot struct {
	api         *tgbotapi.BotAPI
	engine      *Engine
	pollTimeout int
	log         zerolog.Logger
}

// NewBot connects to the Telegram API.
func NewBot(cfg config.BotConfig, engine *Engine, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:         api,
		engine:      engine,
		pollTimeout: cfg.PollTimeout,
		log:         log,
	}, nil
}

// Username reports the bot account name, for startup logging.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is canceled. Each update is
// handled in its own goroutine; the session store serializes updates that
// belong to the same conversation.
func (b *Bot) Run(ctx context.Context) error {
	b.setCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) setCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: CmdStart, Description: "Начать работу с ботом"},
		tgbotapi.BotCommand{Command: CmdNew, Description: "Создать новую заявку"},
		tgbotapi.BotCommand{Command: CmdMy, Description: "Мои заявки"},
		tgbotapi.BotCommand{Command: CmdWeb, Description: "Открыть веб-кабинет"},
		tgbotapi.BotCommand{Command: CmdHelp, Description: "Помощь по командам"},
		tgbotapi.BotCommand{Command: CmdStatus, Description: "Статус системы"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.log.Warn().Err(err).Msg("failed to set bot commands")
	}
}

// handleUpdate processes one update. A panic here must not take the
// process down; other conversations keep being served.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("recovered from update handler panic")
		}
	}()

	switch {
	case update.Message != nil && update.Message.Text != "" && update.Message.From != nil:
		msg := update.Message
		from := Identity{ID: msg.From.ID, Name: msg.From.FirstName}
		replies := b.engine.HandleText(ctx, from, msg.Text)
		b.send(msg.Chat.ID, replies)

	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		cq := update.CallbackQuery
		// Clear the spinner on the pressed button first.
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			b.log.Debug().Err(err).Msg("failed to answer callback query")
		}

		from := Identity{ID: cq.From.ID, Name: cq.From.FirstName}
		replies := b.engine.HandleCallback(ctx, from, cq.Data)
		if cq.Message != nil {
			b.send(cq.Message.Chat.ID, replies)
		}
	}
}

func (b *Bot) send(chatID int64, replies []Reply) {
	for _, r := range replies {
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if r.MainMenu {
			msg.ReplyMarkup = mainKeyboard()
		} else if markup := inlineMarkup(r); markup != nil {
			msg.ReplyMarkup = *markup
		}

		if _, err := b.api.Send(msg); err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("failed to send message")
		}
	}
}
