package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/service"
)

// AdminHandler handles the round administration commands.
type AdminHandler struct {
	matchday  *service.MatchdayService
	standings *service.StandingsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(matchdayService *service.MatchdayService, standingsService *service.StandingsService) *AdminHandler {
	return &AdminHandler{
		matchday:  matchdayService,
		standings: standingsService,
	}
}

func logAdmin(c tele.Context, operation string) *zerolog.Event {
	ev := log.Info().Str("operation", operation)
	if sender := c.Sender(); sender != nil {
		ev = ev.Int64("admin_id", sender.ID)
	}
	return ev
}

// HandleDraw handles the /estrai command: allocates the next round and pins
// the announcement in the chat.
func (h *AdminHandler) HandleDraw(c tele.Context) error {
	ctx := context.Background()
	number, round, err := h.matchday.Draw(ctx)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "draw").Int("round", number).Msg("Admin operation executed")

	names, err := h.standings.Names(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load participant names")
	}

	msg, err := c.Bot().Send(c.Chat(), FormatRound(number, round, names))
	if err != nil {
		return err
	}
	if err := c.Bot().Pin(msg, tele.Silent); err != nil {
		log.Warn().Err(err).Int("round", number).Msg("Failed to pin round message")
		return nil
	}
	if err := h.matchday.SetPinnedMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
		log.Warn().Err(err).Int("round", number).Msg("Failed to store pinned message")
	}
	return nil
}

// HandleStartRound handles the /inizio_giornata command.
func (h *AdminHandler) HandleStartRound(c tele.Context) error {
	res, err := h.matchday.Start(context.Background())
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "start_round").Int("round", res.Round).Msg("Admin operation executed")

	msg := fmt.Sprintf("🏁 Giornata %d iniziata: giocate chiuse", res.Round)
	if len(res.Charged) > 0 {
		msg += "\n🚫 Senza giocata: " + strings.Join(res.Charged, ", ")
	}
	return c.Reply(msg)
}

// HandleEndRound handles the /fine_giornata command and unpins the round
// announcement.
func (h *AdminHandler) HandleEndRound(c tele.Context) error {
	ctx := context.Background()
	_, current, _ := h.standings.CurrentRound(ctx)

	number, err := h.matchday.End(ctx)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "end_round").Int("round", number).Msg("Admin operation executed")

	if current != nil && current.Pinned != nil {
		if err := c.Bot().Unpin(&tele.Chat{ID: current.Pinned.ChatID}, current.Pinned.MessageID); err != nil {
			log.Warn().Err(err).Int("round", number).Msg("Failed to unpin round message")
		}
	}
	return c.Reply(fmt.Sprintf("🔚 Giornata %d finita. Usa /verifica o /esito_manuale", number))
}

// HandleVerify handles the /verifica command.
func (h *AdminHandler) HandleVerify(c tele.Context) error {
	ctx := context.Background()
	report, err := h.matchday.Verify(ctx)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "verify").Int("round", report.Round).Int("lost", len(report.Lost)).Msg("Admin operation executed")

	names, _ := h.standings.Names(ctx)
	return c.Reply(FormatVerifyReport(report, names))
}

// HandleManualOutcome handles the /esito_manuale command.
// Format: /esito_manuale [@perdente ...]
func (h *AdminHandler) HandleManualOutcome(c tele.Context) error {
	ctx := context.Background()
	losers := make([]string, 0, len(c.Args()))
	for _, arg := range c.Args() {
		if !strings.HasPrefix(arg, "@") {
			return c.Reply("❌ Usa: /esito_manuale @perdente1 @perdente2 ...")
		}
		losers = append(losers, arg)
	}

	report, err := h.matchday.ManualOutcome(ctx, losers)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "manual_outcome").Int("round", report.Round).Strs("losers", losers).Msg("Admin operation executed")

	names, _ := h.standings.Names(ctx)
	return c.Reply(FormatManualReport(report, names))
}

// HandlePayment handles the /pagato command.
// Format: /pagato @handle <importo>
func (h *AdminHandler) HandlePayment(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 || !strings.HasPrefix(args[0], "@") {
		return c.Reply("❌ Usa: /pagato @handle <importo>")
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.Reply("❌ Importo non valido")
	}

	p, err := h.matchday.RecordPayment(context.Background(), args[0], amount)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "payment").Str("handle", args[0]).Int64("amount", amount).Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("✅ Pagamento registrato\n👤 %s\n💶 Pagato: %d\n🧾 Ancora dovuti: %d",
		args[0], amount, p.Outstanding()))
}

// HandleGroupWager handles the /gruppo command.
// Format: /gruppo <importo>
func (h *AdminHandler) HandleGroupWager(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usa: /gruppo <importo>")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ Importo non valido")
	}

	pool, err := h.matchday.RecordGroupWager(context.Background(), amount)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	logAdmin(c, "group_wager").Int64("amount", amount).Msg("Admin operation executed")
	return c.Reply(FormatPool(pool))
}
