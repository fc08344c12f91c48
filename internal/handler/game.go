// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/service"
)

// GameHandler handles the participants' wager commands.
type GameHandler struct {
	matchday  *service.MatchdayService
	standings *service.StandingsService
	pending   *PendingStore
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(matchdayService *service.MatchdayService, standingsService *service.StandingsService, pending *PendingStore) *GameHandler {
	if pending == nil {
		pending = NewPendingStore()
	}
	return &GameHandler{
		matchday:  matchdayService,
		standings: standingsService,
		pending:   pending,
	}
}

// senderHandle returns the sender's @username, the participant's identity.
func senderHandle(c tele.Context) (string, bool) {
	sender := c.Sender()
	if sender == nil || sender.Username == "" {
		return "", false
	}
	return "@" + sender.Username, true
}

const noUsername = "❌ Imposta uno username Telegram per partecipare"

// HandleStart handles the /start command.
func (h *GameHandler) HandleStart(c tele.Context) error {
	rules := h.matchday.Rules()
	msg := "⚽ Benvenuto nel gioco della giornata!\n" + divider
	msg += "Ogni giornata ti viene estratta una partita: gioca con /giocata <giocata> <quota>.\n"
	msg += fmt.Sprintf("Quote sotto %s usano un jolly (%d per ciclo, poi penale di %d).\n",
		rules.MinOdds.StringFixed(2), rules.JollyQuota, rules.JollyPenalty)
	msg += fmt.Sprintf("Ogni giocata persa costa %d.\n\n", rules.LossCharge)
	msg += "/partite giornata in corso\n"
	msg += "/giocata <giocata> <quota> registra la giocata\n"
	msg += "/dati <dati> dati di verifica\n"
	msg += "/alternativa <giocata> <quota> alternativa se il giocatore non gioca\n"
	msg += "/ritira ritira la giocata\n"
	msg += "/classifica /jolly /malloppo /debiti /giornate /movimenti"
	return c.Reply(msg)
}

// HandleWager handles the /giocata command.
// Format: /giocata <giocata> <quota>
func (h *GameHandler) HandleWager(c tele.Context) error {
	ctx := context.Background()
	handle, ok := senderHandle(c)
	if !ok {
		return c.Reply(noUsername)
	}

	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return c.Reply("❌ Usa: /giocata <giocata> <quota>, es. /giocata Over 2.5 1.65")
	}

	sub, err := h.matchday.Submit(ctx, handle, text)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	h.pending.Clear(handle)

	markup := BuildVerificationPanel(h.matchday.Catalog().List(), CallbackVerification)
	return c.Reply(FormatSubmission(sub), markup)
}

// HandleCallback handles the verification type buttons.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}
	handle, ok := senderHandle(c)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: noUsername, ShowAlert: true})
	}

	prefix, t, ok := ParseCallback(callback.Data)
	if !ok {
		return c.Respond()
	}
	if prefix == CallbackCancel {
		h.pending.Clear(handle)
		_ = c.Respond(&tele.CallbackResponse{Text: "Annullato"})
		return c.Edit("❌ Scelta annullata")
	}

	entry, ok := h.matchday.Catalog().Get(t)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: ErrorMessage(verify.ErrUnknownVerificationType), ShowAlert: true})
	}

	step := Pending{Type: entry.Type}
	if prefix == CallbackFallback {
		prev, ok := h.pending.Get(handle)
		if !ok || prev.FallbackText == "" {
			return c.Respond(&tele.CallbackResponse{Text: "Prima invia /alternativa <giocata> <quota>", ShowAlert: true})
		}
		step.Fallback = true
		step.FallbackText = prev.FallbackText
	}
	h.pending.Put(handle, step)

	_ = c.Respond(&tele.CallbackResponse{Text: entry.Label})
	return c.Edit(fmt.Sprintf("🔎 %s: %s\nInvia /dati %s", handle, entry.Label, entry.Hint))
}

// HandleData handles the /dati command completing a verification step.
// Format: /dati <dati>
func (h *GameHandler) HandleData(c tele.Context) error {
	ctx := context.Background()
	handle, ok := senderHandle(c)
	if !ok {
		return c.Reply(noUsername)
	}

	step, ok := h.pending.Get(handle)
	if !ok || step.Type == "" {
		return c.Reply("❌ Prima registra una giocata con /giocata e scegli il tipo di verifica")
	}
	data := strings.TrimSpace(c.Message().Payload)

	if step.Fallback {
		fallback, err := h.matchday.AttachFallback(ctx, handle, step.FallbackText, step.Type, data)
		if err != nil {
			return c.Reply(ErrorMessage(err))
		}
		h.pending.Clear(handle)
		return c.Reply(fmt.Sprintf("✅ Alternativa registrata: %s", FormatWager(fallback)))
	}

	wager, err := h.matchday.AttachVerification(ctx, handle, step.Type, data)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	h.pending.Clear(handle)

	msg := fmt.Sprintf("✅ Verifica registrata per %s", FormatWager(wager))
	if _, named := wager.Subject(); named {
		msg += "\nSe il giocatore non gioca puoi indicare un'alternativa con /alternativa <giocata> <quota>"
	}
	return c.Reply(msg)
}

// HandleFallback handles the /alternativa command.
// Format: /alternativa <giocata> <quota>
func (h *GameHandler) HandleFallback(c tele.Context) error {
	handle, ok := senderHandle(c)
	if !ok {
		return c.Reply(noUsername)
	}

	text := strings.TrimSpace(c.Message().Payload)
	_, odds, err := matchday.ParsePlay(text)
	if err != nil {
		return c.Reply("❌ Usa: /alternativa <giocata> <quota>, es. /alternativa Over 1.5 1.55")
	}
	if odds.LessThan(h.matchday.Rules().MinOdds) {
		return c.Reply(ErrorMessage(matchday.ErrFallbackOdds))
	}

	h.pending.Put(handle, Pending{Fallback: true, FallbackText: text})
	markup := BuildVerificationPanel(h.matchday.Catalog().List(), CallbackFallback)
	return c.Reply("Scegli il tipo di verifica dell'alternativa:", markup)
}

// HandleWithdraw handles the /ritira command.
func (h *GameHandler) HandleWithdraw(c tele.Context) error {
	ctx := context.Background()
	handle, ok := senderHandle(c)
	if !ok {
		return c.Reply(noUsername)
	}
	if err := h.matchday.Withdraw(ctx, handle); err != nil {
		return c.Reply(ErrorMessage(err))
	}
	h.pending.Clear(handle)
	return c.Reply("🗑 Giocata ritirata")
}

// HandleMatches handles the /partite command.
func (h *GameHandler) HandleMatches(c tele.Context) error {
	ctx := context.Background()
	number, round, err := h.standings.CurrentRound(ctx)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	names, err := h.standings.Names(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load participant names")
		return c.Reply(ErrorMessage(err))
	}
	return c.Reply(FormatRound(number, round, names))
}
