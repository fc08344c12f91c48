package handler

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matchday-bot/internal/service"
)

// RankingHandler handles the read-only league commands.
type RankingHandler struct {
	standings *service.StandingsService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(standingsService *service.StandingsService) *RankingHandler {
	return &RankingHandler{
		standings: standingsService,
	}
}

// HandleStandings handles the /classifica command.
func (h *RankingHandler) HandleStandings(c tele.Context) error {
	rows, err := h.standings.Standings(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load standings")
		return c.Reply(ErrorMessage(err))
	}
	return c.Reply(FormatStandings(rows))
}

// HandleJolly handles the /jolly command.
func (h *RankingHandler) HandleJolly(c tele.Context) error {
	rows, err := h.standings.Jolly(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load jolly usage")
		return c.Reply(ErrorMessage(err))
	}
	return c.Reply(FormatJolly(rows))
}

// HandlePool handles the /malloppo command.
func (h *RankingHandler) HandlePool(c tele.Context) error {
	pool, err := h.standings.Pool(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load pool")
		return c.Reply(ErrorMessage(err))
	}
	return c.Reply(FormatPool(pool))
}

// HandleDebts handles the /debiti command.
func (h *RankingHandler) HandleDebts(c tele.Context) error {
	rows, err := h.standings.Debts(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load debts")
		return c.Reply(ErrorMessage(err))
	}
	return c.Reply(FormatDebts(rows))
}

// HandleHistory handles the /giornate command.
func (h *RankingHandler) HandleHistory(c tele.Context) error {
	ctx := context.Background()
	rows, err := h.standings.History(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load round history")
		return c.Reply(ErrorMessage(err))
	}
	names, _ := h.standings.Names(ctx)
	return c.Reply(FormatHistory(rows, names))
}

// HandleMovements handles the /movimenti command.
// Format: /movimenti [@handle]
func (h *RankingHandler) HandleMovements(c tele.Context) error {
	handle, ok := senderHandle(c)
	if args := c.Args(); len(args) > 0 && strings.HasPrefix(args[0], "@") {
		handle, ok = args[0], true
	}
	if !ok {
		return c.Reply(noUsername)
	}

	ctx := context.Background()
	entries, err := h.standings.Movements(ctx, handle, 10)
	if err != nil {
		return c.Reply(ErrorMessage(err))
	}
	totals, err := h.standings.Totals(ctx, handle)
	if err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("Failed to load movement totals")
	}
	return c.Reply(FormatMovements(handle, entries, totals))
}
