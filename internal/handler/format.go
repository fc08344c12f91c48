package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/model"
	"matchday-bot/internal/pkg/lock"
	"matchday-bot/internal/service"
)

const divider = "━━━━━━━━━━━━━━━\n"

// errorMessages maps named failures to what the chat sees. Order matters:
// the first match wins, so specific failures precede their kinds.
var errorMessages = []struct {
	err error
	msg string
}{
	{matchday.ErrInsufficientMatches, "❌ Non ci sono abbastanza partite per tutti i partecipanti"},
	{matchday.ErrDuplicateRound, "❌ Giornata già estratta"},
	{matchday.ErrPreviousRoundOpen, "❌ La giornata precedente non è ancora finita"},
	{matchday.ErrRoundNotScheduled, "❌ Giornata non presente nel calendario"},
	{matchday.ErrNoParticipants, "❌ Nessun partecipante registrato"},
	{matchday.ErrNotYetAssigned, "❌ Nessuna giornata estratta"},
	{matchday.ErrAlreadyStarted, "❌ Giornata già iniziata"},
	{matchday.ErrAlreadyFinished, "❌ Giornata già finita"},
	{matchday.ErrNotYetStarted, "❌ La giornata non è ancora iniziata"},
	{matchday.ErrNothingAllocated, "❌ Nessuna giornata estratta"},
	{matchday.ErrNoActiveRound, "❌ Nessuna giornata in corso"},
	{matchday.ErrRoundClosed, "❌ Le giocate per questa giornata sono chiuse"},
	{matchday.ErrMalformedWager, "❌ Formato non valido. Usa: /giocata <giocata> <quota>, es. /giocata Over 2.5 1.65"},
	{matchday.ErrUnknownParticipant, "❌ Non sei tra i partecipanti"},
	{matchday.ErrNotAssigned, "❌ Nessuna partita assegnata in questa giornata"},
	{matchday.ErrNoWager, "❌ Nessuna giocata registrata"},
	{matchday.ErrFallbackNeedsPlayer, "❌ L'alternativa è possibile solo per giocate su un giocatore"},
	{matchday.ErrFallbackOdds, "❌ La quota dell'alternativa deve essere almeno la quota minima"},
	{matchday.ErrMissingVerification, "❌ Dati di verifica mancanti"},
	{matchday.ErrAlreadyResolved, "❌ Giocata già verificata"},
	{matchday.ErrInvalidAmount, "❌ L'importo deve essere positivo"},
	{verify.ErrUnknownVerificationType, "❌ Tipo di verifica sconosciuto"},
	{verify.ErrMalformedVerificationData, "❌ Dati di verifica non validi"},
	{service.ErrJournalDisabled, "❌ Storico movimenti non disponibile"},
	{lock.ErrLockTimeout, "⏳ Operazione in corso, riprova tra poco"},
	{matchday.ErrValidation, "❌ Dati non validi"},
	{matchday.ErrStateConflict, "❌ Operazione non consentita in questo momento"},
	{matchday.ErrNotFound, "❌ Non trovato"},
	{matchday.ErrResourceExhausted, "❌ Risorse insufficienti"},
}

// ErrorMessage returns the chat message for err.
func ErrorMessage(err error) string {
	for _, e := range errorMessages {
		if errors.Is(err, e.err) {
			if e.err == verify.ErrMalformedVerificationData {
				return e.msg + ": " + detail(err)
			}
			return e.msg
		}
	}
	return "❌ Errore interno, riprova più tardi"
}

// detail returns the text after the last ": " of an error.
func detail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// Names maps handles to display names.
type Names map[string]string

func (n Names) of(handle string) string {
	if name := n[handle]; name != "" {
		return name
	}
	return handle
}

// FormatRound renders the assignments of a round.
func FormatRound(number int, round *model.Round, names Names) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ Giornata %d (%s)\n", number, statusLabel(round.Status))
	b.WriteString(divider)

	handles := make([]string, 0, len(round.Assignments))
	for h := range round.Assignments {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	for _, h := range handles {
		fmt.Fprintf(&b, "%s: %s", names.of(h), round.Assignments[h])
		if w := round.Bets[h]; w != nil {
			fmt.Fprintf(&b, " → %s", FormatWager(w))
		}
		b.WriteString("\n")
	}
	if len(round.Leftover) > 0 {
		b.WriteString(divider)
		fmt.Fprintf(&b, "Avanzate: %s\n", strings.Join(round.Leftover, ", "))
	}
	return b.String()
}

// FormatWager renders one wager on a single line.
func FormatWager(w *model.Wager) string {
	s := w.Play
	if !w.Odds.IsZero() {
		s += " @" + w.Odds.StringFixed(2)
	}
	if w.Jolly {
		s += " 🃏"
	}
	if w.Resolution != model.ResolutionPending {
		s += " " + resolutionIcon(w.Resolution)
	}
	return s
}

// FormatSubmission confirms a recorded wager.
func FormatSubmission(sub *matchday.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Giocata registrata per la giornata %d\n", sub.Round)
	fmt.Fprintf(&b, "🎯 %s @%s\n", sub.Wager.Play, sub.Wager.Odds.StringFixed(2))
	if sub.Wager.Jolly {
		fmt.Fprintf(&b, "🃏 Jolly usato (%d usati, %d rimasti)\n", sub.JollyUsed, sub.JollyRemaining)
	}
	if sub.Penalized {
		b.WriteString("💸 Limite jolly superato: penale applicata\n")
	}
	b.WriteString("\nScegli il tipo di verifica:")
	return b.String()
}

// FormatStandings renders the leaderboard.
func FormatStandings(rows []service.Standing) string {
	var b strings.Builder
	b.WriteString("📊 Classifica\n")
	b.WriteString(divider)
	if len(rows) == 0 {
		b.WriteString("Nessun partecipante\n")
	}
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, r.Name, r.Points)
	}
	return b.String()
}

// FormatJolly renders jolly usage.
func FormatJolly(rows []service.JollyUsage) string {
	var b strings.Builder
	b.WriteString("🃏 Jolly\n")
	b.WriteString(divider)
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %d usati, %d rimasti\n", r.Name, r.Used, r.Remaining)
	}
	return b.String()
}

// FormatPool renders the shared pool.
func FormatPool(p model.SharedPool) string {
	var b strings.Builder
	b.WriteString("💰 Malloppo\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "Giocate sbagliate: %d\n", p.WrongPlays)
	fmt.Fprintf(&b, "Penali jolly: %d\n", p.JollyPenalties)
	fmt.Fprintf(&b, "Giocate di gruppo: %d\n", p.GroupPlays)
	b.WriteString(divider)
	fmt.Fprintf(&b, "Totale: %d\n", p.Total())
	return b.String()
}

// FormatDebts renders what each participant owes.
func FormatDebts(rows []service.DebtLine) string {
	var b strings.Builder
	b.WriteString("🧾 Debiti\n")
	b.WriteString(divider)
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %d (dovuti %d, pagati %d)\n", r.Name, r.Outstanding, r.Debt, r.Paid)
	}
	return b.String()
}

// FormatHistory renders finished rounds and their losers.
func FormatHistory(rows []service.RoundSummary, names Names) string {
	var b strings.Builder
	b.WriteString("📅 Giornate\n")
	b.WriteString(divider)
	if len(rows) == 0 {
		b.WriteString("Nessuna giornata conclusa\n")
	}
	for _, r := range rows {
		losers := make([]string, len(r.Losers))
		for i, h := range r.Losers {
			losers[i] = names.of(h)
		}
		if len(losers) == 0 {
			fmt.Fprintf(&b, "Giornata %d: nessuno ha sbagliato\n", r.Number)
			continue
		}
		fmt.Fprintf(&b, "Giornata %d: %s\n", r.Number, strings.Join(losers, ", "))
	}
	return b.String()
}

// FormatMovements renders journal entries, newest first, followed by the
// per-kind totals.
func FormatMovements(handle string, entries []*model.JournalEntry, totals map[string]int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📒 Movimenti di %s\n", handle)
	b.WriteString(divider)
	if len(entries) == 0 {
		b.WriteString("Nessun movimento\n")
	}
	for _, e := range entries {
		sign := "+"
		if e.Kind == model.EntryPayment {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s G%d %s%d %s", e.CreatedAt.Format("02/01"), e.Round, sign, e.Amount, kindLabel(e.Kind))
		if e.Description != nil && *e.Description != "" {
			fmt.Fprintf(&b, " (%s)", *e.Description)
		}
		b.WriteString("\n")
	}
	if len(totals) > 0 {
		b.WriteString(divider)
		for _, kind := range []string{model.EntryLossCharge, model.EntryJollyPenalty, model.EntryPayment, model.EntryGroupWager} {
			if sum, ok := totals[kind]; ok {
				fmt.Fprintf(&b, "Totale %s: %d\n", kindLabel(kind), sum)
			}
		}
	}
	return b.String()
}

// FormatVerifyReport summarizes an automatic verification.
func FormatVerifyReport(r *service.VerifyReport, names Names) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Verifica giornata %d\n", r.Round)
	b.WriteString(divider)
	writeGroup(&b, "✅ Vinte", r.Won, names)
	writeGroup(&b, "❌ Perse", r.Lost, names)
	writeGroup(&b, "❓ Non verificabili", r.Unresolvable, names)
	writeGroup(&b, "🚫 Senza giocata", r.Missing, names)
	return b.String()
}

// FormatManualReport summarizes a manual outcome.
func FormatManualReport(r *matchday.ManualReport, names Names) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Esito manuale giornata %d\n", r.Round)
	b.WriteString(divider)
	writeGroup(&b, "✅ Vinte", r.Won, names)
	writeGroup(&b, "❌ Perse", r.Lost, names)
	writeGroup(&b, "⏭ Già verificate", r.Skipped, names)
	return b.String()
}

func writeGroup(b *strings.Builder, title string, handles []string, names Names) {
	if len(handles) == 0 {
		return
	}
	display := make([]string, len(handles))
	for i, h := range handles {
		display[i] = names.of(h)
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(display, ", "))
}

func statusLabel(s model.RoundStatus) string {
	switch s {
	case model.StatusAssigned:
		return "estratta"
	case model.StatusStarted:
		return "in corso"
	case model.StatusFinished:
		return "finita"
	}
	return string(s)
}

func resolutionIcon(r model.Resolution) string {
	switch r {
	case model.ResolutionWon:
		return "✅"
	case model.ResolutionLost:
		return "❌"
	case model.ResolutionUnresolvable:
		return "❓"
	}
	return ""
}

func kindLabel(kind string) string {
	switch kind {
	case model.EntryLossCharge:
		return "giocata persa"
	case model.EntryJollyPenalty:
		return "penale jolly"
	case model.EntryPayment:
		return "pagamento"
	case model.EntryGroupWager:
		return "giocata di gruppo"
	}
	return kind
}
