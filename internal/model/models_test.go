package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundNumbersAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RoundNumbers
	}{
		{"list", `[1,2,3]`, RoundNumbers{1, 2, 3}},
		{"unsorted list with duplicates", `[3,1,3,2]`, RoundNumbers{1, 2, 3}},
		{"map", `{"2": {}, "1": {}}`, RoundNumbers{1, 2}},
		{"null", `null`, RoundNumbers{}},
		{"empty map", `{}`, RoundNumbers{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RoundNumbers
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundNumbersRejectsBadKeys(t *testing.T) {
	var got RoundNumbers
	assert.Error(t, json.Unmarshal([]byte(`{"uno": {}}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`"1"`), &got))
}

func TestRoundNumbersWritesList(t *testing.T) {
	raw, err := json.Marshal(RoundNumbers(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	raw, err = json.Marshal(RoundNumbers{}.Add(2, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(raw))
}

func TestLegacyWagerDecodes(t *testing.T) {
	raw := `{"giocata":"1X","quota":1.3,"jolly":true,"tipo_verifica":"combo_esito","dati_verifica":{},"esito":"persa"}`

	var w Wager
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	assert.Equal(t, "1X", w.Play)
	assert.True(t, w.Odds.Equal(decimal.RequireFromString("1.3")))
	assert.True(t, w.Jolly)
	assert.Equal(t, ResolutionLost, w.Resolution)
	require.NotNil(t, w.Check)
	assert.Equal(t, VerifyOutcomeCombo, w.Check.Type())
	assert.Empty(t, w.Check.(OutcomeCombo).Results)
}

func TestWagerRoundTripKeepsVariantAndFallback(t *testing.T) {
	w := Wager{
		Play:  "Leao tiri in porta 2",
		Odds:  decimal.RequireFromString("2.10"),
		Check: PlayerStatisticThreshold{Player: "Rafael Leao", Statistic: "shots_on_target", Threshold: 2},
		Fallback: &Wager{
			Play:  "Over 2.5",
			Odds:  decimal.RequireFromString("1.80"),
			Check: OutcomeComboOverUnder{OutcomeCombo: OutcomeCombo{Results: []string{"1X"}}, Side: SideOver, Line: 2.5},
		},
	}

	raw, err := json.Marshal(w)
	require.NoError(t, err)

	var got Wager
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, w.Check, got.Check)
	require.NotNil(t, got.Fallback)
	assert.Equal(t, w.Fallback.Check, got.Fallback.Check)
	assert.Equal(t, ResolutionPending, got.Resolution)

	subject, ok := got.Subject()
	assert.True(t, ok)
	assert.Equal(t, "Rafael Leao", subject)
}

func TestUnknownVerificationIsPreserved(t *testing.T) {
	raw := `{"giocata":"x","quota":"2","jolly":false,"tipo_verifica":"corner_race","dati_verifica":{"team":"home"},"esito":"pending"}`

	var w Wager
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	require.IsType(t, UnknownVerification{}, w.Check)

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tipo_verifica":"corner_race"`)
	assert.Contains(t, string(out), `"dati_verifica":{"team":"home"}`)
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := NewDocument()
	doc.EnsurePlayer("@chri", "Chri")
	doc.Rounds[1] = &Round{
		Assignments: map[string]string{"@chri": "Inter-Milan"},
		Bets:        map[string]*Wager{"@chri": {Play: "1", Odds: decimal.RequireFromString("2")}},
		Status:      StatusAssigned,
	}
	doc.History = doc.History.Add(1)

	clone, err := doc.Clone()
	require.NoError(t, err)

	clone.Players["@chri"].Points = 9
	clone.Rounds[1].Status = StatusFinished

	assert.Equal(t, 0, doc.Players["@chri"].Points)
	assert.Equal(t, StatusAssigned, doc.Rounds[1].Status)
	assert.Equal(t, RoundNumbers{1}, clone.History)
}

func TestPlayerStatsLookup(t *testing.T) {
	stats := PlayerStats{ShotsOnTarget: 3, Cards: 1}

	v, ok := stats.Stat("Tiri in porta")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = stats.Stat("cards")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = stats.Stat("dribbling")
	assert.False(t, ok)
}

func TestNormalizeRejectsNullEntries(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"bets": {"1": null}}`), &doc))
	assert.ErrorIs(t, doc.Normalize(), ErrMalformedDocument)

	doc = Document{}
	require.NoError(t, json.Unmarshal([]byte(`{"bets": {"2": {"status": "assigned"}}}`), &doc))
	require.NoError(t, doc.Normalize())
	assert.NotNil(t, doc.Rounds[2].Bets)
	assert.NotNil(t, doc.Players)
}
