package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// VerificationType tags how a wager is checked against a match outcome.
type VerificationType string

// Supported verification types.
const (
	VerifyOutcomeCombo          VerificationType = "outcome_combo"
	VerifyOutcomeComboGoalBoth  VerificationType = "outcome_combo_with_goal_both"
	VerifyOutcomeComboOverUnder VerificationType = "outcome_combo_with_over_under"
	VerifyBothTeamsGoalRange    VerificationType = "both_teams_goal_range"
	VerifyMatchStatistic        VerificationType = "match_statistic_threshold"
	VerifyPlayerStatistic       VerificationType = "player_statistic_threshold"
	VerifyCardBooking           VerificationType = "card_booking"
	VerifyPlayerGoalOrAssist    VerificationType = "player_goal_or_assist"
	VerifyTripleCombo           VerificationType = "triple_combo"
)

// legacyTypes maps tags written by older documents to current ones.
var legacyTypes = map[VerificationType]VerificationType{
	"combo_esito":                VerifyOutcomeCombo,
	"statistic_threshold_player": VerifyPlayerStatistic,
}

// Canonical resolves legacy aliases.
func (t VerificationType) Canonical() VerificationType {
	if c, ok := legacyTypes[t]; ok {
		return c
	}
	return t
}

// Side selects the direction of an over/under check.
type Side string

// Over/under sides.
const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Verification is the typed payload of a wager check. Each variant carries
// only the fields its rule needs.
type Verification interface {
	Type() VerificationType
}

// PlayerSubject is implemented by checks that name an individual player.
type PlayerSubject interface {
	Verification
	Subject() string
}

// GoalRange is an inclusive goal interval.
type GoalRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies within the range.
func (g GoalRange) Contains(n int) bool {
	return n >= g.Min && n <= g.Max
}

// OutcomeCombo wins when the match result is among Results, and the total
// goals fall within TotalGoals when present.
type OutcomeCombo struct {
	Results    []string   `json:"results"`
	TotalGoals *GoalRange `json:"total_goals,omitempty"`
}

func (OutcomeCombo) Type() VerificationType { return VerifyOutcomeCombo }

// OutcomeComboGoalBoth adds a both-teams-scored condition.
type OutcomeComboGoalBoth struct {
	OutcomeCombo
	BothScore bool `json:"both_score"`
}

func (OutcomeComboGoalBoth) Type() VerificationType { return VerifyOutcomeComboGoalBoth }

// OutcomeComboOverUnder adds a strict over/under line on total goals.
type OutcomeComboOverUnder struct {
	OutcomeCombo
	Side Side    `json:"side"`
	Line float64 `json:"line"`
}

func (OutcomeComboOverUnder) Type() VerificationType { return VerifyOutcomeComboOverUnder }

// BothTeamsGoalRange bounds each side's goals independently.
type BothTeamsGoalRange struct {
	Home GoalRange `json:"home"`
	Away GoalRange `json:"away"`
}

func (BothTeamsGoalRange) Type() VerificationType { return VerifyBothTeamsGoalRange }

// MatchStatisticThreshold compares a match-level statistic strictly.
type MatchStatisticThreshold struct {
	Statistic string  `json:"statistic"`
	Side      Side    `json:"side"`
	Threshold float64 `json:"threshold"`
}

func (MatchStatisticThreshold) Type() VerificationType { return VerifyMatchStatistic }

// PlayerStatisticThreshold requires a player's statistic to reach Threshold.
type PlayerStatisticThreshold struct {
	Player    string  `json:"player"`
	Statistic string  `json:"statistic"`
	Threshold float64 `json:"threshold"`
}

func (PlayerStatisticThreshold) Type() VerificationType { return VerifyPlayerStatistic }
func (v PlayerStatisticThreshold) Subject() string     { return v.Player }

// CardBooking wins when the player receives at least one card.
type CardBooking struct {
	Player string `json:"player"`
}

func (CardBooking) Type() VerificationType { return VerifyCardBooking }
func (v CardBooking) Subject() string     { return v.Player }

// PlayerGoalOrAssist wins when the player scores or assists.
type PlayerGoalOrAssist struct {
	Player string `json:"player"`
}

func (PlayerGoalOrAssist) Type() VerificationType { return VerifyPlayerGoalOrAssist }
func (v PlayerGoalOrAssist) Subject() string     { return v.Player }

// TripleCombo is the conjunction of a result, an over/under line and a
// both-teams-scored condition.
type TripleCombo struct {
	Results   []string `json:"results"`
	Side      Side     `json:"side"`
	Line      float64  `json:"line"`
	BothScore bool     `json:"both_score"`
}

func (TripleCombo) Type() VerificationType { return VerifyTripleCombo }

// UnknownVerification preserves a tag or payload this version cannot decode.
type UnknownVerification struct {
	Tag  VerificationType
	Data json.RawMessage
}

func (v UnknownVerification) Type() VerificationType { return v.Tag }

// MarshalJSON writes the preserved payload back unchanged.
func (v UnknownVerification) MarshalJSON() ([]byte, error) {
	if len(v.Data) == 0 {
		return []byte("{}"), nil
	}
	return v.Data, nil
}

// DecodeVerification builds the typed variant for a tag and its JSON payload.
// Unknown tags and undecodable payloads are preserved as UnknownVerification.
func DecodeVerification(tag VerificationType, data json.RawMessage) Verification {
	if tag == "" {
		return nil
	}
	tag = tag.Canonical()

	var target Verification
	switch tag {
	case VerifyOutcomeCombo:
		target = &OutcomeCombo{}
	case VerifyOutcomeComboGoalBoth:
		target = &OutcomeComboGoalBoth{}
	case VerifyOutcomeComboOverUnder:
		target = &OutcomeComboOverUnder{}
	case VerifyBothTeamsGoalRange:
		target = &BothTeamsGoalRange{}
	case VerifyMatchStatistic:
		target = &MatchStatisticThreshold{}
	case VerifyPlayerStatistic:
		target = &PlayerStatisticThreshold{}
	case VerifyCardBooking:
		target = &CardBooking{}
	case VerifyPlayerGoalOrAssist:
		target = &PlayerGoalOrAssist{}
	case VerifyTripleCombo:
		target = &TripleCombo{}
	default:
		return UnknownVerification{Tag: tag, Data: data}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, target); err != nil {
			return UnknownVerification{Tag: tag, Data: data}
		}
	}
	return deref(target)
}

// deref stores variants by value so type switches match on plain structs.
func deref(v Verification) Verification {
	switch t := v.(type) {
	case *OutcomeCombo:
		return *t
	case *OutcomeComboGoalBoth:
		return *t
	case *OutcomeComboOverUnder:
		return *t
	case *BothTeamsGoalRange:
		return *t
	case *MatchStatisticThreshold:
		return *t
	case *PlayerStatisticThreshold:
		return *t
	case *CardBooking:
		return *t
	case *PlayerGoalOrAssist:
		return *t
	case *TripleCombo:
		return *t
	}
	return v
}

// Wager is a participant's play for their assigned match.
type Wager struct {
	Play       string
	Odds       decimal.Decimal
	Jolly      bool
	Check      Verification // nil until the verification step is completed
	Fallback   *Wager
	Resolution Resolution
}

// Subject returns the player named by the wager's check, if any.
func (w *Wager) Subject() (string, bool) {
	if w == nil || w.Check == nil {
		return "", false
	}
	ps, ok := w.Check.(PlayerSubject)
	if !ok {
		return "", false
	}
	return ps.Subject(), true
}

type wagerJSON struct {
	Play       string           `json:"giocata"`
	Odds       decimal.Decimal  `json:"quota"`
	Jolly      bool             `json:"jolly"`
	Type       VerificationType `json:"tipo_verifica,omitempty"`
	Data       json.RawMessage  `json:"dati_verifica,omitempty"`
	Fallback   *Wager           `json:"alternativa,omitempty"`
	Resolution Resolution       `json:"esito"`
}

// MarshalJSON writes the persisted wager shape.
func (w Wager) MarshalJSON() ([]byte, error) {
	out := wagerJSON{
		Play:       w.Play,
		Odds:       w.Odds,
		Jolly:      w.Jolly,
		Fallback:   w.Fallback,
		Resolution: w.Resolution,
	}
	if out.Resolution == "" {
		out.Resolution = ResolutionPending
	}
	if w.Check != nil {
		data, err := json.Marshal(w.Check)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verification data: %w", err)
		}
		out.Type = w.Check.Type()
		out.Data = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the persisted wager shape.
func (w *Wager) UnmarshalJSON(b []byte) error {
	var in wagerJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("failed to decode wager: %w", err)
	}
	*w = Wager{
		Play:       in.Play,
		Odds:       in.Odds,
		Jolly:      in.Jolly,
		Check:      DecodeVerification(in.Type, in.Data),
		Fallback:   in.Fallback,
		Resolution: in.Resolution,
	}
	if w.Resolution == "" {
		w.Resolution = ResolutionPending
	}
	return nil
}
