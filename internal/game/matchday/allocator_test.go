package matchday

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"matchday-bot/internal/model"
)

var league = []string{"@chri", "@gabbo", "@pavi", "@fruca", "@effe", "@gargiu", "@gio"}

func newDoc(handles ...string) *model.Document {
	doc := model.NewDocument()
	for _, h := range handles {
		doc.EnsurePlayer(h, h[1:])
	}
	return doc
}

func schedule(n int) []string {
	matches := make([]string, n)
	for i := range matches {
		matches[i] = fmt.Sprintf("Home%d-Away%d", i, i)
	}
	return matches
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestAllocateSevenPlayersTenMatches(t *testing.T) {
	doc := newDoc(league...)
	sched := schedule(10)

	round, err := Allocate(doc, 1, sched, league, seeded())
	require.NoError(t, err)

	assert.Len(t, round.Assignments, 7)
	assert.Len(t, round.Leftover, 3)
	assert.Equal(t, model.StatusAssigned, round.Status)
	assert.False(t, round.Settled)
	assert.Empty(t, round.Bets)
	assert.Equal(t, model.RoundNumbers{1}, doc.History)

	seen := map[string]bool{}
	for _, h := range league {
		m, ok := round.Assignments[h]
		require.True(t, ok, "missing assignment for %s", h)
		assert.False(t, seen[m], "match %s assigned twice", m)
		seen[m] = true
	}
	for _, m := range round.Leftover {
		assert.False(t, seen[m], "leftover %s also assigned", m)
	}
}

func TestAllocateLeftoverKeepsScheduleOrder(t *testing.T) {
	doc := newDoc(league...)
	sched := schedule(12)

	round, err := Allocate(doc, 1, sched, league, seeded())
	require.NoError(t, err)

	pos := map[string]int{}
	for i, m := range sched {
		pos[m] = i
	}
	for i := 1; i < len(round.Leftover); i++ {
		assert.Less(t, pos[round.Leftover[i-1]], pos[round.Leftover[i]])
	}
}

func TestAllocateErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(doc *model.Document)
		number  int
		matches int
		want    error
		kind    error
	}{
		{
			name:    "insufficient matches",
			number:  1,
			matches: 6,
			want:    ErrInsufficientMatches,
			kind:    ErrResourceExhausted,
		},
		{
			name: "duplicate round",
			setup: func(doc *model.Document) {
				doc.Rounds[1] = &model.Round{Status: model.StatusFinished}
			},
			number:  1,
			matches: 10,
			want:    ErrDuplicateRound,
			kind:    ErrStateConflict,
		},
		{
			name: "previous round open",
			setup: func(doc *model.Document) {
				doc.Rounds[1] = &model.Round{Status: model.StatusStarted}
			},
			number:  2,
			matches: 10,
			want:    ErrPreviousRoundOpen,
			kind:    ErrStateConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(league...)
			if tt.setup != nil {
				tt.setup(doc)
			}
			before, err := doc.Clone()
			require.NoError(t, err)

			_, err = Allocate(doc, tt.number, schedule(tt.matches), league, seeded())
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.kind)

			after, cerr := doc.Clone()
			require.NoError(t, cerr)
			assert.Equal(t, before, after)
		})
	}
}

func TestAllocateRejectsDuplicateParticipants(t *testing.T) {
	doc := newDoc("@chri")
	_, err := Allocate(doc, 1, schedule(3), []string{"@chri", "@chri"}, seeded())
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNextRoundNumber(t *testing.T) {
	doc := model.NewDocument()
	assert.Equal(t, 1, NextRoundNumber(doc))

	doc.History = doc.History.Add(1, 2)
	assert.Equal(t, 3, NextRoundNumber(doc))

	doc.Rounds[5] = &model.Round{Status: model.StatusFinished}
	assert.Equal(t, 6, NextRoundNumber(doc))
}

// TestAllocationBijectionProperty checks that for any schedule at least as
// large as the participant list, every participant receives exactly one
// distinct match and the rest end up in leftover.
func TestAllocationBijectionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numPlayers := rapid.IntRange(1, 12).Draw(t, "numPlayers")
		numMatches := rapid.IntRange(numPlayers, 20).Draw(t, "numMatches")
		seed := rapid.Uint64().Draw(t, "seed")

		players := make([]string, numPlayers)
		for i := range players {
			players[i] = fmt.Sprintf("@p%d", i)
		}
		doc := newDoc(players...)
		sched := schedule(numMatches)

		round, err := Allocate(doc, 1, sched, players, rand.New(rand.NewPCG(seed, seed^0x9e37)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(round.Assignments) != numPlayers {
			t.Fatalf("expected %d assignments, got %d", numPlayers, len(round.Assignments))
		}
		if len(round.Leftover) != numMatches-numPlayers {
			t.Fatalf("expected %d leftover, got %d", numMatches-numPlayers, len(round.Leftover))
		}

		used := map[string]int{}
		for _, m := range round.Assignments {
			used[m]++
		}
		for _, m := range round.Leftover {
			used[m]++
		}
		for _, m := range sched {
			if used[m] != 1 {
				t.Fatalf("match %s used %d times", m, used[m])
			}
		}
	})
}
