package matchday

import (
	"fmt"
	"sort"

	"matchday-bot/internal/model"
)

// PlaceholderPlay is the play text of wagers created for participants who
// never submitted one.
const PlaceholderPlay = "nessuna giocata"

// ApplyResolution settles a wager once and applies its effect on the
// participant and the pool. A lost wager costs one point and the loss
// charge; won and unresolvable wagers change no totals. Unresolvable
// wagers may be resolved again later.
func ApplyResolution(doc *model.Document, handle string, wager *model.Wager, res model.Resolution, rules Rules) error {
	if wager.Resolution.IsFinal() {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, handle)
	}
	player, ok := doc.Players[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, handle)
	}

	wager.Resolution = res
	if res == model.ResolutionLost {
		player.Points++
		player.Debt += rules.LossCharge
		doc.Pool.WrongPlays += rules.LossCharge
	}
	return nil
}

// ManualReport lists what a manual outcome changed.
type ManualReport struct {
	Round   int
	Won     []string
	Lost    []string
	Skipped []string
}

// ApplyManualOutcome resolves every unsettled wager of the latest round from
// an admin-supplied list of losers. Participants without a wager receive a
// placeholder. Wagers already won or lost are left untouched. Every loser
// must hold an assignment in the round; otherwise nothing is changed.
func ApplyManualOutcome(doc *model.Document, losers []string, rules Rules) (*ManualReport, error) {
	number, round, ok := doc.LatestRound()
	if !ok {
		return nil, ErrNothingAllocated
	}
	if round.Status == model.StatusAssigned {
		return nil, fmt.Errorf("%w: round %d", ErrNotYetStarted, number)
	}

	lost := make(map[string]bool, len(losers))
	for _, handle := range losers {
		if _, ok := round.Assignments[handle]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotAssigned, handle)
		}
		if _, ok := doc.Players[handle]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, handle)
		}
		lost[handle] = true
	}

	report := &ManualReport{Round: number}
	for _, handle := range sortedHandles(round.Assignments) {
		if _, ok := doc.Players[handle]; !ok {
			report.Skipped = append(report.Skipped, handle)
			continue
		}
		wager := round.Bets[handle]
		if wager == nil {
			wager = placeholder()
			round.Bets[handle] = wager
		}
		if wager.Resolution.IsFinal() {
			report.Skipped = append(report.Skipped, handle)
			continue
		}

		res := model.ResolutionWon
		if lost[handle] {
			res = model.ResolutionLost
		}
		if err := ApplyResolution(doc, handle, wager, res, rules); err != nil {
			return nil, err
		}
		if res == model.ResolutionLost {
			report.Lost = append(report.Lost, handle)
		} else {
			report.Won = append(report.Won, handle)
		}
	}
	return report, nil
}

// ChargeMissingWagers gives every assigned participant of the latest round
// without a wager a lost placeholder. It returns the charged handles.
func ChargeMissingWagers(doc *model.Document, rules Rules) ([]string, error) {
	_, round, err := CurrentRound(doc)
	if err != nil {
		return nil, err
	}
	var charged []string
	for _, handle := range sortedHandles(round.Assignments) {
		if _, ok := round.Bets[handle]; ok {
			continue
		}
		if _, ok := doc.Players[handle]; !ok {
			continue
		}
		wager := placeholder()
		round.Bets[handle] = wager
		if err := ApplyResolution(doc, handle, wager, model.ResolutionLost, rules); err != nil {
			return charged, err
		}
		charged = append(charged, handle)
	}
	return charged, nil
}

// RecordPayment adds a payment towards the participant's debt.
func RecordPayment(doc *model.Document, handle string, amount int64) (*model.Participant, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	player, ok := doc.Players[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, handle)
	}
	player.Paid += amount
	return player, nil
}

// RecordGroupWager adds a group-wager contribution to the pool.
func RecordGroupWager(doc *model.Document, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	doc.Pool.GroupPlays += amount
	return nil
}

func placeholder() *model.Wager {
	return &model.Wager{Play: PlaceholderPlay, Resolution: model.ResolutionPending}
}

func sortedHandles(assignments map[string]string) []string {
	handles := make([]string, 0, len(assignments))
	for h := range assignments {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}
