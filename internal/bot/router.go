package bot

import (
	"strings"

	"github.com/gkhcrm/gkhcrm/internal/bot/session"
)

// Command names understood by the bot.
const (
	CmdStart  = "start"
	CmdNew    = "new"
	CmdMy     = "my"
	CmdWeb    = "web"
	CmdHelp   = "help"
	CmdStatus = "status"
)

// Fixed texts of the persistent menu keyboard. A message equal to one of
// these is always treated as the corresponding command, even mid-dialogue.
const (
	ButtonNewTicket = "📝 Создать заявку"
	ButtonMyTickets = "📋 Мои заявки"
	ButtonWeb       = "🌐 Веб-кабинет"
	ButtonHelp      = "❓ Помощь"
)

// Callback payloads of inline buttons.
const (
	CallbackRefreshTickets = "refresh_tickets"
	CallbackNewTicket      = "new_ticket"
)

var slashCommands = map[string]string{
	CmdStart:  CmdStart,
	CmdNew:    CmdNew,
	CmdMy:     CmdMy,
	CmdWeb:    CmdWeb,
	CmdHelp:   CmdHelp,
	CmdStatus: CmdStatus,
}

var menuCommands = map[string]string{
	ButtonNewTicket: CmdNew,
	ButtonMyTickets: CmdMy,
	ButtonWeb:       CmdWeb,
	ButtonHelp:      CmdHelp,
}

// EventKind tags the routing decision for one inbound message.
type EventKind int

const (
	// EventNone means the message is dropped: free text outside a dialogue.
	EventNone EventKind = iota
	// EventCommand is a slash command or an exact menu-button match.
	EventCommand
	// EventDialogue is free text feeding the ticket-creation dialogue.
	EventDialogue
)

// Event is the tagged result of classifying one inbound message.
type Event struct {
	Kind    EventKind
	Command string
	Text    string
}

// Classify decides, once per inbound message, how it is routed. Exact
// command and menu-label matches win regardless of dialogue state, so a
// message identical to a menu label is never captured as title or
// description text. Everything else is dialogue input, honored only while
// a dialogue is in progress.
func Classify(text string, state session.State) Event {
	if name, ok := parseSlashCommand(text); ok {
		return Event{Kind: EventCommand, Command: name}
	}
	if name, ok := menuCommands[text]; ok {
		return Event{Kind: EventCommand, Command: name}
	}
	if state != session.Idle {
		return Event{Kind: EventDialogue, Text: text}
	}
	return Event{Kind: EventNone}
}

// parseSlashCommand recognizes "/cmd" and "/cmd@BotName" forms. Unknown
// slash commands are not commands: they fall through to the dialogue like
// any other text.
func parseSlashCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.TrimPrefix(text, "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	name = strings.ToLower(name)
	if _, ok := slashCommands[name]; !ok {
		return "", false
	}
	return name, true
}
