package matchday

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"matchday-bot/internal/model"
)

// playPattern splits "<free text> <decimal odds>" on the last token.
var playPattern = regexp.MustCompile(`^(.*\S)\s+([0-9]+(\.[0-9]+)?)$`)

// ParsePlay splits a submission into its play text and odds.
func ParsePlay(text string) (string, decimal.Decimal, error) {
	m := playPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedWager, text)
	}
	odds, err := decimal.NewFromString(m[2])
	if err != nil || !odds.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("%w: odds %q", ErrMalformedWager, m[2])
	}
	return m[1], odds, nil
}

// Submission describes the effect of a recorded wager.
type Submission struct {
	Round          int
	Wager          *model.Wager
	JollyUsed      int
	JollyRemaining int
	Penalized      bool
}

// openRound returns the latest round if it currently accepts wagers.
func openRound(doc *model.Document, rules Rules) (int, *model.Round, error) {
	number, round, err := CurrentRound(doc)
	if err != nil {
		return 0, nil, err
	}
	switch round.Status {
	case model.StatusAssigned:
	case model.StatusStarted:
		if !rules.AllowStartedWagers {
			return number, nil, fmt.Errorf("%w: round %d already started", ErrRoundClosed, number)
		}
	default:
		return number, nil, fmt.Errorf("%w: round %d is %s", ErrRoundClosed, number, round.Status)
	}
	return number, round, nil
}

// Submit records the participant's wager for the open round, replacing any
// earlier unsettled one. Odds below the minimum consume one jolly; exceeding the
// quota resets the counter to 1 and charges the penalty once.
func Submit(doc *model.Document, handle, text string, rules Rules) (*Submission, error) {
	number, round, err := openRound(doc, rules)
	if err != nil {
		return nil, err
	}
	player, ok := doc.Players[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, handle)
	}
	if _, ok := round.Assignments[handle]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAssigned, handle)
	}
	if prev := round.Bets[handle]; prev != nil && prev.Resolution.IsFinal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, handle)
	}

	play, odds, err := ParsePlay(text)
	if err != nil {
		return nil, err
	}

	wager := &model.Wager{
		Play:       play,
		Odds:       odds,
		Resolution: model.ResolutionPending,
	}
	sub := &Submission{Round: number, Wager: wager}

	if odds.LessThan(rules.MinOdds) {
		wager.Jolly = true
		if player.WildcardUsed+1 > rules.JollyQuota {
			player.WildcardUsed = 1
			player.Debt += rules.JollyPenalty
			doc.Pool.JollyPenalties += rules.JollyPenalty
			sub.Penalized = true
		} else {
			player.WildcardUsed++
		}
	}
	sub.JollyUsed = player.WildcardUsed
	sub.JollyRemaining = rules.JollyQuota - player.WildcardUsed
	if sub.JollyRemaining < 0 {
		sub.JollyRemaining = 0
	}

	round.Bets[handle] = wager
	return sub, nil
}

// AttachVerification sets the typed check on the participant's current wager.
// A fallback survives only while the check still names a player.
func AttachVerification(doc *model.Document, handle string, check model.Verification, rules Rules) (*model.Wager, error) {
	if check == nil {
		return nil, ErrMissingVerification
	}
	wager, err := currentWager(doc, handle, rules)
	if err != nil {
		return nil, err
	}
	wager.Check = check
	if _, ok := wager.Subject(); !ok {
		wager.Fallback = nil
	}
	return wager, nil
}

// AttachFallback records the alternative used when the primary wager's
// player does not take part in the match. Fallbacks never use a jolly.
func AttachFallback(doc *model.Document, handle, text string, check model.Verification, rules Rules) (*model.Wager, error) {
	if check == nil {
		return nil, ErrMissingVerification
	}
	wager, err := currentWager(doc, handle, rules)
	if err != nil {
		return nil, err
	}
	if _, ok := wager.Subject(); !ok {
		return nil, ErrFallbackNeedsPlayer
	}

	play, odds, err := ParsePlay(text)
	if err != nil {
		return nil, err
	}
	if odds.LessThan(rules.MinOdds) {
		return nil, fmt.Errorf("%w: %s < %s", ErrFallbackOdds, odds, rules.MinOdds)
	}

	wager.Fallback = &model.Wager{
		Play:       play,
		Odds:       odds,
		Check:      check,
		Resolution: model.ResolutionPending,
	}
	return wager.Fallback, nil
}

// Withdraw removes the participant's wager while the round is still assigned.
func Withdraw(doc *model.Document, handle string) error {
	number, round, err := CurrentRound(doc)
	if err != nil {
		return err
	}
	if round.Status != model.StatusAssigned {
		return fmt.Errorf("%w: round %d is %s", ErrRoundClosed, number, round.Status)
	}
	if _, ok := round.Bets[handle]; !ok {
		return fmt.Errorf("%w: %s", ErrNoWager, handle)
	}
	delete(round.Bets, handle)
	return nil
}

func currentWager(doc *model.Document, handle string, rules Rules) (*model.Wager, error) {
	_, round, err := openRound(doc, rules)
	if err != nil {
		return nil, err
	}
	wager, ok := round.Bets[handle]
	if !ok || wager == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoWager, handle)
	}
	if wager.Resolution.IsFinal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyResolved, handle)
	}
	return wager, nil
}
