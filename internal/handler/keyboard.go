package handler

import (
	"strings"

	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/model"
)

// Callback data prefixes.
const (
	CallbackVerification = "vt:"  // vt:card_booking
	CallbackFallback     = "alt:" // alt:outcome_combo
	CallbackCancel       = "vt_cancel"
)

// BuildVerificationPanel lists every verification type, two per row.
// prefix selects whether the choice applies to the wager or its fallback.
func BuildVerificationPanel(entries []verify.Entry, prefix string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	var current []tele.Btn
	for i, e := range entries {
		current = append(current, markup.Data(e.Label, prefix+string(e.Type)))
		if len(current) == 2 || i == len(entries)-1 {
			rows = append(rows, markup.Row(current...))
			current = nil
		}
	}
	rows = append(rows, markup.Row(markup.Data("❌ Annulla", CallbackCancel)))

	markup.Inline(rows...)
	return markup
}

// ParseCallback splits callback data into its prefix and verification type.
func ParseCallback(data string) (prefix string, t model.VerificationType, ok bool) {
	// telebot prefixes data buttons with \f
	data = strings.TrimPrefix(data, "\f")
	if data == CallbackCancel {
		return CallbackCancel, "", true
	}
	for _, p := range []string{CallbackVerification, CallbackFallback} {
		if strings.HasPrefix(data, p) {
			rest := strings.TrimPrefix(data, p)
			if rest == "" {
				return "", "", false
			}
			return p, model.VerificationType(rest), true
		}
	}
	return "", "", false
}
