// Package bot implements the conversational front-end: a command router,
// a two-step ticket-creation dialogue and the Telegram adapter that feeds
// them.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gkhcrm/gkhcrm/internal/apiclient"
	"github.com/gkhcrm/gkhcrm/internal/bot/session"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/rs/zerolog"
)

// cancelKeyword aborts the dialogue when a message equals it, compared
// case-insensitively against the whole message.
const cancelKeyword = "отмена"

// APIClient is the slice of the persistence service the engine needs.
type APIClient interface {
	GetOrCreateUser(ctx context.Context, telegramID, name string) (*domain.User, error)
	CreateTicket(ctx context.Context, input apiclient.TicketInput) (*domain.Ticket, error)
	ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListAllTickets(ctx context.Context) ([]domain.Ticket, error)
}

// Identity describes the remote party of one conversation.
type Identity struct {
	ID   int64
	Name string
}

func (id Identity) telegramID() string {
	return strconv.FormatInt(id.ID, 10)
}

func (id Identity) displayName() string {
	if id.Name == "" {
		return "Пользователь"
	}
	return id.Name
}

// Reply is one outbound message, independent of the chat platform.
type Reply struct {
	Text     string
	MainMenu bool           // attach the persistent menu keyboard
	Links    []LinkButton   // inline URL buttons
	Actions  []ActionButton // inline callback buttons
}

// LinkButton opens a URL.
type LinkButton struct {
	Label string
	URL   string
}

// ActionButton triggers a callback.
type ActionButton struct {
	Label string
	Data  string
}

// Engine drives the ticket-creation dialogue and the standalone commands
// around it. All session mutation happens here, under the store's
// per-identity lock.
type Engine struct {
	client     APIClient
	sessions   *session.Store
	webBaseURL string
	log        zerolog.Logger
}

// NewEngine creates a conversation engine.
func NewEngine(client APIClient, sessions *session.Store, webBaseURL string, log zerolog.Logger) *Engine {
	return &Engine{
		client:     client,
		sessions:   sessions,
		webBaseURL: webBaseURL,
		log:        log,
	}
}

// HandleText processes one inbound text message and returns the replies to
// send. The per-identity lock is held until the message is fully handled,
// persistence calls included.
func (e *Engine) HandleText(ctx context.Context, from Identity, text string) []Reply {
	release := e.sessions.Acquire(from.ID)
	defer release()

	sess, _ := e.sessions.Get(from.ID)

	switch ev := Classify(text, sess.State); ev.Kind {
	case EventCommand:
		return e.handleCommand(ctx, from, ev.Command)
	case EventDialogue:
		return e.handleDialogue(ctx, from, sess, ev.Text)
	default:
		// Free text outside a dialogue is dropped on purpose.
		return nil
	}
}

// HandleCallback processes an inline-button press.
func (e *Engine) HandleCallback(ctx context.Context, from Identity, data string) []Reply {
	release := e.sessions.Acquire(from.ID)
	defer release()

	switch data {
	case CallbackRefreshTickets:
		return e.showTickets(ctx, from)
	case CallbackNewTicket:
		return e.startTicketCreation(ctx, from)
	default:
		e.log.Debug().Str("data", data).Msg("unrecognized callback")
		return nil
	}
}

func (e *Engine) handleCommand(ctx context.Context, from Identity, command string) []Reply {
	switch command {
	case CmdStart:
		return e.register(ctx, from)
	case CmdNew:
		return e.startTicketCreation(ctx, from)
	case CmdMy:
		return e.showTickets(ctx, from)
	case CmdWeb:
		return []Reply{webReply(e.dashboardURL(from))}
	case CmdHelp:
		return []Reply{{Text: helpMessage()}}
	case CmdStatus:
		return e.systemStatus(ctx)
	default:
		return nil
	}
}

// register handles /start: create-or-fetch the user and greet. It also
// resets any dialogue in progress, which is how the source behaves.
func (e *Engine) register(ctx context.Context, from Identity) []Reply {
	user, err := e.client.GetOrCreateUser(ctx, from.telegramID(), from.displayName())
	if err != nil {
		e.log.Error().Err(err).Int64("chat", from.ID).Msg("registration failed")
		return []Reply{{Text: "❌ Ошибка при регистрации: " + err.Error()}}
	}

	e.sessions.Set(from.ID, session.Session{UserID: user.ID.String()})

	return []Reply{{
		Text:     welcomeMessage(from.displayName()),
		MainMenu: true,
	}}
}

// startTicketCreation moves the conversation into the title step. The user
// reference is (re)established first so the final submission has an owner.
func (e *Engine) startTicketCreation(ctx context.Context, from Identity) []Reply {
	user, err := e.client.GetOrCreateUser(ctx, from.telegramID(), from.displayName())
	if err != nil {
		e.log.Error().Err(err).Int64("chat", from.ID).Msg("cannot resolve user for new ticket")
		return []Reply{{Text: "❌ Ошибка: не удалось найти пользователя. " + err.Error()}}
	}

	e.sessions.Set(from.ID, session.Session{
		UserID: user.ID.String(),
		State:  session.AwaitingTitle,
	})

	return []Reply{{Text: titlePrompt()}}
}

// handleDialogue advances the two-step dialogue with one plain message.
// The caller already holds the per-identity lock; sess is the state the
// message was classified against.
func (e *Engine) handleDialogue(ctx context.Context, from Identity, sess session.Session, text string) []Reply {
	if strings.EqualFold(text, cancelKeyword) {
		e.sessions.Set(from.ID, sess.Reset())
		return []Reply{{Text: "❌ Создание заявки отменено."}}
	}

	switch sess.State {
	case session.AwaitingTitle:
		sess.DraftTitle = text
		sess.State = session.AwaitingDescription
		e.sessions.Set(from.ID, sess)
		return []Reply{{Text: descriptionPrompt()}}

	case session.AwaitingDescription:
		return e.submitTicket(ctx, from, sess, text)

	default:
		return nil
	}
}

// submitTicket completes the dialogue. The draft is cleared only on
// confirmed success, so a failed submission can be retried with the same
// title by just sending the description again.
func (e *Engine) submitTicket(ctx context.Context, from Identity, sess session.Session, description string) []Reply {
	if sess.UserID == "" {
		e.log.Warn().Int64("chat", from.ID).Msg("dialogue reached submission without a user reference")
		return []Reply{{Text: "❌ Ошибка: сессия не найдена. Отправьте /start и попробуйте снова."}}
	}

	ticket, err := e.client.CreateTicket(ctx, apiclient.TicketInput{
		Title:       sess.DraftTitle,
		Description: description,
		UserID:      sess.UserID,
		Channel:     domain.ChannelTelegram,
	})
	if err != nil {
		e.log.Error().Err(err).Int64("chat", from.ID).Msg("ticket creation failed")
		return []Reply{{Text: "❌ Ошибка при создании заявки: " + err.Error()}}
	}

	e.sessions.Set(from.ID, sess.Reset())

	e.log.Info().
		Int64("chat", from.ID).
		Str("ticket", ticket.ID.String()).
		Msg("ticket created")

	return []Reply{{Text: successMessage(ticket)}}
}

// showTickets renders the grouped listing for /my.
func (e *Engine) showTickets(ctx context.Context, from Identity) []Reply {
	user, err := e.client.GetOrCreateUser(ctx, from.telegramID(), from.displayName())
	if err != nil {
		return []Reply{{Text: "❌ Сначала зарегистрируйтесь с помощью /start"}}
	}

	tickets, err := e.client.ListTickets(ctx, user.ID.String())
	if err != nil {
		e.log.Error().Err(err).Int64("chat", from.ID).Msg("ticket listing failed")
		return []Reply{{Text: "❌ Ошибка при получении заявок: " + err.Error()}}
	}

	if len(tickets) == 0 {
		return []Reply{{Text: "📭 У вас пока нет заявок.\n\nСоздайте первую заявку командой /new"}}
	}

	return []Reply{{
		Text: ticketListMessage(tickets),
		Actions: []ActionButton{
			{Label: "🔄 Обновить", Data: CallbackRefreshTickets},
			{Label: "➕ Новая заявка", Data: CallbackNewTicket},
		},
		Links: []LinkButton{
			{Label: "🌐 Веб-кабинет", URL: e.dashboardURL(from)},
		},
	}}
}

// systemStatus answers /status with a liveness summary of the persistence
// service and the session store.
func (e *Engine) systemStatus(ctx context.Context) []Reply {
	tickets, err := e.client.ListAllTickets(ctx)
	apiUp := err == nil
	if err != nil {
		e.log.Warn().Err(err).Msg("status probe failed")
	}

	return []Reply{{Text: statusMessage(apiUp, len(tickets), e.sessions.Len())}}
}

func (e *Engine) dashboardURL(from Identity) string {
	return fmt.Sprintf("%s?tgId=%d", e.webBaseURL, from.ID)
}

func webReply(url string) Reply {
	return Reply{
		Text:  webMessage(url),
		Links: []LinkButton{{Label: "Открыть веб-кабинет", URL: url}},
	}
}
