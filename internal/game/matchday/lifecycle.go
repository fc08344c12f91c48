package matchday

import (
	"fmt"

	"matchday-bot/internal/model"
)

// Begin moves the latest round from assigned to started.
func Begin(doc *model.Document) (int, error) {
	number, round, ok := doc.LatestRound()
	if !ok {
		return 0, ErrNotYetAssigned
	}
	switch round.Status {
	case model.StatusStarted:
		return number, ErrAlreadyStarted
	case model.StatusFinished:
		return number, ErrAlreadyFinished
	case model.StatusAssigned:
	default:
		return number, fmt.Errorf("%w: round %d has status %q", ErrStateConflict, number, round.Status)
	}
	round.Status = model.StatusStarted
	return number, nil
}

// End moves the latest round from started to finished and marks it settled.
func End(doc *model.Document) (int, error) {
	number, round, ok := doc.LatestRound()
	if !ok {
		return 0, ErrNothingAllocated
	}
	switch round.Status {
	case model.StatusAssigned:
		return number, ErrNotYetStarted
	case model.StatusFinished:
		return number, ErrAlreadyFinished
	case model.StatusStarted:
	default:
		return number, fmt.Errorf("%w: round %d has status %q", ErrStateConflict, number, round.Status)
	}
	round.Status = model.StatusFinished
	round.Settled = true
	return number, nil
}

// CurrentRound returns the latest round or ErrNoActiveRound.
func CurrentRound(doc *model.Document) (int, *model.Round, error) {
	number, round, ok := doc.LatestRound()
	if !ok {
		return 0, nil, ErrNoActiveRound
	}
	return number, round, nil
}
