package handler

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/model"
	"matchday-bot/internal/pkg/lock"
	"matchday-bot/internal/service"
)

func TestBuildVerificationPanel(t *testing.T) {
	entries := verify.DefaultCatalog().List()
	markup := BuildVerificationPanel(entries, CallbackVerification)

	rows := markup.InlineKeyboard
	require.Len(t, rows, (len(entries)+1)/2+1)
	for _, row := range rows[:len(rows)-1] {
		assert.LessOrEqual(t, len(row), 2)
	}
	assert.Equal(t, CallbackVerification+string(entries[0].Type), rows[0][0].Unique)

	last := rows[len(rows)-1]
	require.Len(t, last, 1)
	assert.Equal(t, CallbackCancel, last[0].Unique)
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data   string
		prefix string
		typ    model.VerificationType
		ok     bool
	}{
		{"\fvt:card_booking", CallbackVerification, model.VerifyCardBooking, true},
		{"alt:outcome_combo", CallbackFallback, model.VerifyOutcomeCombo, true},
		{"\fvt_cancel", CallbackCancel, "", true},
		{"vt:", "", "", false},
		{"shop_buy", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			prefix, typ, ok := ParseCallback(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.typ, typ)
		})
	}
}

func TestPendingStore(t *testing.T) {
	now := time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC)
	s := NewPendingStore()
	s.now = func() time.Time { return now }

	_, ok := s.Get("@gio")
	assert.False(t, ok)

	s.Put("@gio", Pending{Type: model.VerifyCardBooking})
	p, ok := s.Get("@gio")
	require.True(t, ok)
	assert.Equal(t, model.VerifyCardBooking, p.Type)

	now = now.Add(pendingTTL + time.Second)
	_, ok = s.Get("@gio")
	assert.False(t, ok, "expired step must be dropped")

	s.Put("@gio", Pending{Fallback: true, FallbackText: "Over 1.5 1.60"})
	s.Clear("@gio")
	_, ok = s.Get("@gio")
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "❌ Giornata già estratta",
		ErrorMessage(fmt.Errorf("draw: %w", matchday.ErrDuplicateRound)))
	assert.Equal(t, "⏳ Operazione in corso, riprova tra poco", ErrorMessage(lock.ErrLockTimeout))
	assert.Equal(t, "❌ Storico movimenti non disponibile", ErrorMessage(service.ErrJournalDisabled))
	assert.Equal(t, "❌ Errore interno, riprova più tardi", ErrorMessage(fmt.Errorf("boom")))

	malformed := fmt.Errorf("%w: %s", verify.ErrMalformedVerificationData, "linea mancante")
	assert.Equal(t, "❌ Dati di verifica non validi: linea mancante", ErrorMessage(malformed))
}

func TestFormatWager(t *testing.T) {
	w := &model.Wager{
		Play:       "Over 2.5",
		Odds:       decimal.RequireFromString("1.4"),
		Jolly:      true,
		Resolution: model.ResolutionLost,
	}
	assert.Equal(t, "Over 2.5 @1.40 🃏 ❌", FormatWager(w))

	placeholder := &model.Wager{Resolution: model.ResolutionPending}
	assert.Equal(t, "", FormatWager(placeholder))
}

func TestFormatRound(t *testing.T) {
	round := &model.Round{
		Assignments: map[string]string{"@gio": "Inter-Milan", "@pavi": "Roma-Lazio"},
		Leftover:    []string{"Napoli-Juventus"},
		Bets: map[string]*model.Wager{
			"@gio": {Play: "1", Odds: decimal.RequireFromString("2.10"), Resolution: model.ResolutionPending},
		},
		Status: model.StatusAssigned,
	}

	out := FormatRound(3, round, Names{"@gio": "Giovanni"})
	assert.Contains(t, out, "Giornata 3 (estratta)")
	assert.Contains(t, out, "Giovanni: Inter-Milan → 1 @2.10")
	assert.Contains(t, out, "@pavi: Roma-Lazio\n")
	assert.Contains(t, out, "Avanzate: Napoli-Juventus")
}

func TestFormatReports(t *testing.T) {
	names := Names{"@chri": "Christian"}

	verifyOut := FormatVerifyReport(&service.VerifyReport{
		Round: 2,
		Won:   []string{"@chri"},
		Lost:  []string{"@gio"},
	}, names)
	assert.Contains(t, verifyOut, "✅ Vinte: Christian")
	assert.Contains(t, verifyOut, "❌ Perse: @gio")
	assert.NotContains(t, verifyOut, "Non verificabili")

	manualOut := FormatManualReport(&matchday.ManualReport{Round: 2, Skipped: []string{"@chri"}}, names)
	assert.Contains(t, manualOut, "⏭ Già verificate: Christian")
}

func TestFormatMovements(t *testing.T) {
	desc := "esito manuale"
	at := time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC)
	entries := []*model.JournalEntry{
		{Handle: "@gio", Round: 2, Amount: 10, Kind: model.EntryPayment, CreatedAt: at},
		{Handle: "@gio", Round: 1, Amount: 5, Kind: model.EntryLossCharge, Description: &desc, CreatedAt: at},
	}

	out := FormatMovements("@gio", entries, map[string]int64{model.EntryLossCharge: 5, model.EntryPayment: 10})
	assert.Contains(t, out, "01/09 G2 -10 pagamento\n")
	assert.Contains(t, out, "01/09 G1 +5 giocata persa (esito manuale)\n")
	assert.Contains(t, out, "Totale giocata persa: 5")
	assert.Contains(t, out, "Totale pagamento: 10")

	assert.Contains(t, FormatMovements("@gio", nil, nil), "Nessun movimento")
}

func TestFormatStandingsAndHistory(t *testing.T) {
	out := FormatStandings([]service.Standing{
		{Handle: "@chri", Name: "Christian", Points: 4},
		{Handle: "@gio", Name: "Giovanni", Points: 2},
	})
	assert.Contains(t, out, "1. Christian: 4\n2. Giovanni: 2\n")

	history := FormatHistory([]service.RoundSummary{
		{Number: 1, Status: model.StatusFinished},
		{Number: 2, Status: model.StatusFinished, Losers: []string{"@gio"}},
	}, Names{"@gio": "Giovanni"})
	assert.Contains(t, history, "Giornata 1: nessuno ha sbagliato")
	assert.Contains(t, history, "Giornata 2: Giovanni")

	assert.Contains(t, FormatPool(model.SharedPool{WrongPlays: 10, JollyPenalties: 20}), "Totale: 30")
}
