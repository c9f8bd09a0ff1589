package bot

import (
	"testing"

	"github.com/gkhcrm/gkhcrm/internal/bot/session"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		state session.State
		want  Event
	}{
		{
			name:  "slash command while idle",
			text:  "/new",
			state: session.Idle,
			want:  Event{Kind: EventCommand, Command: CmdNew},
		},
		{
			name:  "slash command wins over dialogue",
			text:  "/help",
			state: session.AwaitingDescription,
			want:  Event{Kind: EventCommand, Command: CmdHelp},
		},
		{
			name:  "bot-addressed form",
			text:  "/my@GkhCrmBot",
			state: session.Idle,
			want:  Event{Kind: EventCommand, Command: CmdMy},
		},
		{
			name:  "command is case-insensitive",
			text:  "/START",
			state: session.Idle,
			want:  Event{Kind: EventCommand, Command: CmdStart},
		},
		{
			name:  "menu label while idle",
			text:  ButtonMyTickets,
			state: session.Idle,
			want:  Event{Kind: EventCommand, Command: CmdMy},
		},
		{
			name:  "menu label wins over dialogue",
			text:  ButtonNewTicket,
			state: session.AwaitingTitle,
			want:  Event{Kind: EventCommand, Command: CmdNew},
		},
		{
			name:  "free text while idle is dropped",
			text:  "просто сообщение",
			state: session.Idle,
			want:  Event{Kind: EventNone},
		},
		{
			name:  "free text feeds the dialogue",
			text:  "Протекает кран",
			state: session.AwaitingTitle,
			want:  Event{Kind: EventDialogue, Text: "Протекает кран"},
		},
		{
			name:  "unknown slash command is plain text",
			text:  "/frobnicate",
			state: session.AwaitingTitle,
			want:  Event{Kind: EventDialogue, Text: "/frobnicate"},
		},
		{
			name:  "unknown slash command while idle is dropped",
			text:  "/frobnicate",
			state: session.Idle,
			want:  Event{Kind: EventNone},
		},
		{
			name:  "near-miss menu label is dialogue text",
			text:  "Создать заявку",
			state: session.AwaitingTitle,
			want:  Event{Kind: EventDialogue, Text: "Создать заявку"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text, tc.state))
		})
	}
}

func TestParseSlashCommand(t *testing.T) {
	name, ok := parseSlashCommand("/status")
	assert.True(t, ok)
	assert.Equal(t, CmdStatus, name)

	_, ok = parseSlashCommand("status")
	assert.False(t, ok)

	_, ok = parseSlashCommand("/")
	assert.False(t, ok)

	name, ok = parseSlashCommand("/Web@SomeBot")
	assert.True(t, ok)
	assert.Equal(t, CmdWeb, name)
}
