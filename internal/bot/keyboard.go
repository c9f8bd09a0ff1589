package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// mainKeyboard is the persistent menu shown after /start. Its button texts
// are the exact strings the router matches as commands.
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonNewTicket),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonMyTickets),
			tgbotapi.NewKeyboardButton(ButtonWeb),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// inlineMarkup converts a reply's buttons into Telegram inline markup.
// Returns nil when the reply has no buttons.
func inlineMarkup(r Reply) *tgbotapi.InlineKeyboardMarkup {
	if len(r.Actions) == 0 && len(r.Links) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	if len(r.Actions) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r.Actions))
		for _, a := range r.Actions {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Data))
		}
		rows = append(rows, row)
	}

	for _, l := range r.Links {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonURL(l.Label, l.URL),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
