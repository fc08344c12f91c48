package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/model"
)

func TestCatalogParse(t *testing.T) {
	tests := []struct {
		name string
		typ  model.VerificationType
		data string
		want model.Verification
	}{
		{
			name: "combo with range",
			typ:  model.VerifyOutcomeCombo,
			data: "1X 2-4",
			want: model.OutcomeCombo{Results: []string{"1X"}, TotalGoals: &model.GoalRange{Min: 2, Max: 4}},
		},
		{
			name: "combo normalizes tokens",
			typ:  model.VerifyOutcomeCombo,
			data: "2x,x1",
			want: model.OutcomeCombo{Results: []string{"X2", "1X"}},
		},
		{
			name: "legacy tag",
			typ:  "combo_esito",
			data: "2",
			want: model.OutcomeCombo{Results: []string{"2"}},
		},
		{
			name: "goal both",
			typ:  model.VerifyOutcomeComboGoalBoth,
			data: "1 nogoal",
			want: model.OutcomeComboGoalBoth{OutcomeCombo: model.OutcomeCombo{Results: []string{"1"}}, BothScore: false},
		},
		{
			name: "over under with comma decimal",
			typ:  model.VerifyOutcomeComboOverUnder,
			data: "X2 Over 1,5",
			want: model.OutcomeComboOverUnder{OutcomeCombo: model.OutcomeCombo{Results: []string{"X2"}}, Side: model.SideOver, Line: 1.5},
		},
		{
			name: "team ranges",
			typ:  model.VerifyBothTeamsGoalRange,
			data: "1-2 0-1",
			want: model.BothTeamsGoalRange{Home: model.GoalRange{Min: 1, Max: 2}, Away: model.GoalRange{Min: 0, Max: 1}},
		},
		{
			name: "match statistic",
			typ:  model.VerifyMatchStatistic,
			data: "calci d angolo under 10.5",
			want: model.MatchStatisticThreshold{Statistic: "calci_d_angolo", Side: model.SideUnder, Threshold: 10.5},
		},
		{
			name: "player statistic",
			typ:  model.VerifyPlayerStatistic,
			data: "Rafael Leão tiri_in_porta 2",
			want: model.PlayerStatisticThreshold{Player: "Rafael Leão", Statistic: "shots_on_target", Threshold: 2},
		},
		{
			name: "card booking",
			typ:  model.VerifyCardBooking,
			data: "  Nicolò   Barella ",
			want: model.CardBooking{Player: "Nicolò Barella"},
		},
		{
			name: "goal or assist",
			typ:  model.VerifyPlayerGoalOrAssist,
			data: "Lautaro",
			want: model.PlayerGoalOrAssist{Player: "Lautaro"},
		},
		{
			name: "triple",
			typ:  model.VerifyTripleCombo,
			data: "1X over 2.5 goal",
			want: model.TripleCombo{Results: []string{"1X"}, Side: model.SideOver, Line: 2.5, BothScore: true},
		},
	}

	c := DefaultCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Parse(tt.typ, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogParseErrors(t *testing.T) {
	tests := []struct {
		typ  model.VerificationType
		data string
	}{
		{model.VerifyOutcomeCombo, ""},
		{model.VerifyOutcomeCombo, "3"},
		{model.VerifyOutcomeCombo, "1 4-2"},
		{model.VerifyOutcomeComboGoalBoth, "1 maybe"},
		{model.VerifyOutcomeComboOverUnder, "1 over"},
		{model.VerifyOutcomeComboOverUnder, "1 sideways 2.5"},
		{model.VerifyBothTeamsGoalRange, "1-2"},
		{model.VerifyMatchStatistic, "corner 8"},
		{model.VerifyPlayerStatistic, "Leao dribbling 2"},
		{model.VerifyPlayerStatistic, "Leao tiri due"},
		{model.VerifyCardBooking, "   "},
		{model.VerifyTripleCombo, "1 over 2.5"},
	}

	c := DefaultCatalog()
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.data, func(t *testing.T) {
			_, err := c.Parse(tt.typ, tt.data)
			assert.ErrorIs(t, err, ErrMalformedVerificationData)
			assert.ErrorIs(t, err, matchday.ErrValidation)
		})
	}

	_, err := c.Parse("corner_race", "home")
	assert.ErrorIs(t, err, ErrUnknownVerificationType)
}

func TestCatalogOrderAndPlayerFlag(t *testing.T) {
	c := DefaultCatalog()
	entries := c.List()
	require.Len(t, entries, 9)
	assert.Equal(t, model.VerifyOutcomeCombo, entries[0].Type)
	assert.Equal(t, model.VerifyTripleCombo, entries[8].Type)

	for _, e := range entries {
		sample := map[model.VerificationType]string{
			model.VerifyPlayerStatistic:    "Leao tiri 1",
			model.VerifyCardBooking:        "Leao",
			model.VerifyPlayerGoalOrAssist: "Leao",
		}[e.Type]
		if sample == "" {
			assert.False(t, e.Player, e.Type)
			continue
		}
		v, err := e.Parse(sample)
		require.NoError(t, err)
		_, isPlayer := v.(model.PlayerSubject)
		assert.Equal(t, e.Player, isPlayer, e.Type)
	}
}

func TestCatalogRegisterValidation(t *testing.T) {
	c := NewCatalog()
	assert.Error(t, c.Register(Entry{}))
	assert.Error(t, c.Register(Entry{Type: "x"}))
	require.NoError(t, c.Register(Entry{Type: "x", Parse: parseCardBooking}))
	require.NoError(t, c.Register(Entry{Type: "x", Label: "again", Parse: parseCardBooking}))
	assert.Len(t, c.List(), 1)

	e, ok := c.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "again", e.Label)
}
