package matchday

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"matchday-bot/internal/model"
)

// NextRoundNumber returns the number the next allocated round will take.
func NextRoundNumber(doc *model.Document) int {
	next := doc.History.Max()
	if latest, _, ok := doc.LatestRound(); ok && latest > next {
		next = latest
	}
	return next + 1
}

// Allocate assigns one distinct match from schedule to every participant
// and records the new round as assigned.
//
// Matches are sampled without replacement and participants are shuffled by
// a separate draw, then the two sequences are zipped. Unselected matches
// keep their schedule order in Leftover.
func Allocate(doc *model.Document, number int, schedule []string, participants []string, rng *rand.Rand) (*model.Round, error) {
	if _, exists := doc.Rounds[number]; exists {
		return nil, fmt.Errorf("%w: round %d", ErrDuplicateRound, number)
	}
	if latest, r, ok := doc.LatestRound(); ok && r.Status != model.StatusFinished {
		return nil, fmt.Errorf("%w: round %d is %s", ErrPreviousRoundOpen, latest, r.Status)
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	players := append([]string(nil), participants...)
	sort.Strings(players)
	for i := 1; i < len(players); i++ {
		if players[i] == players[i-1] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHandle, players[i])
		}
	}

	if len(schedule) < len(players) {
		return nil, fmt.Errorf("%w: %d matches for %d participants",
			ErrInsufficientMatches, len(schedule), len(players))
	}

	picked := rng.Perm(len(schedule))[:len(players)]
	order := rng.Perm(len(players))

	selected := make(map[int]bool, len(picked))
	assignments := make(map[string]string, len(players))
	for i, idx := range picked {
		selected[idx] = true
		assignments[players[order[i]]] = schedule[idx]
	}

	leftover := make([]string, 0, len(schedule)-len(players))
	for idx, match := range schedule {
		if !selected[idx] {
			leftover = append(leftover, match)
		}
	}

	round := &model.Round{
		Assignments: assignments,
		Leftover:    leftover,
		Bets:        make(map[string]*model.Wager),
		Status:      model.StatusAssigned,
		Settled:     false,
	}
	doc.Rounds[number] = round
	doc.History = doc.History.Add(number)
	return round, nil
}
