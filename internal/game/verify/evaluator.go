// Package verify decides whether a wager is satisfied by a match outcome
// and parses the free-text data players give for each verification type.
package verify

import (
	"strings"

	"matchday-bot/internal/model"
)

// Evaluator resolves wagers against outcomes. It never fails: anything it
// cannot decide is unresolvable.
type Evaluator struct {
	absent model.Resolution
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithAbsentPlayer sets the resolution used when the wager's player does not
// appear in the outcome and no fallback exists. Only lost and unresolvable
// are accepted; anything else keeps the default.
func WithAbsentPlayer(res model.Resolution) Option {
	return func(e *Evaluator) {
		if res == model.ResolutionLost || res == model.ResolutionUnresolvable {
			e.absent = res
		}
	}
}

// NewEvaluator returns an evaluator. Absent players resolve as unresolvable
// unless configured otherwise.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{absent: model.ResolutionUnresolvable}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns won, lost or unresolvable for the wager.
func (e *Evaluator) Evaluate(w *model.Wager, o *model.MatchOutcome) model.Resolution {
	if w == nil || o == nil || w.Check == nil {
		return model.ResolutionUnresolvable
	}

	if subject, ok := w.Subject(); ok {
		if _, _, found := FindPlayer(o.Players, subject); !found {
			if w.Fallback != nil && w.Fallback.Check != nil {
				if fbSubject, ok := w.Fallback.Subject(); ok {
					if _, _, found := FindPlayer(o.Players, fbSubject); !found {
						return e.absent
					}
				}
				return e.check(w.Fallback.Check, o)
			}
			return e.absent
		}
	}
	return e.check(w.Check, o)
}

func (e *Evaluator) check(c model.Verification, o *model.MatchOutcome) model.Resolution {
	switch v := c.(type) {
	case model.OutcomeCombo:
		return verdict(combo(v, o))
	case model.OutcomeComboGoalBoth:
		hit, ok := combo(v.OutcomeCombo, o)
		return verdict(hit && o.BothScored() == v.BothScore, ok)
	case model.OutcomeComboOverUnder:
		hit, ok := combo(v.OutcomeCombo, o)
		line, lineOK := overUnder(v.Side, v.Line, float64(o.Goals()))
		return verdict(hit && line, ok && lineOK)
	case model.BothTeamsGoalRange:
		if v.Home.Min > v.Home.Max || v.Away.Min > v.Away.Max {
			return model.ResolutionUnresolvable
		}
		return verdict(v.Home.Contains(o.HomeGoals) && v.Away.Contains(o.AwayGoals), true)
	case model.MatchStatisticThreshold:
		value, ok := o.MatchStatistic(v.Statistic)
		if !ok {
			return model.ResolutionUnresolvable
		}
		return verdict(overUnder(v.Side, v.Threshold, value))
	case model.PlayerStatisticThreshold:
		stats, _, ok := FindPlayer(o.Players, v.Player)
		if !ok {
			return model.ResolutionUnresolvable
		}
		value, ok := stats.Stat(v.Statistic)
		return verdict(value >= v.Threshold, ok)
	case model.CardBooking:
		stats, _, ok := FindPlayer(o.Players, v.Player)
		return verdict(stats.Cards >= 1, ok)
	case model.PlayerGoalOrAssist:
		stats, _, ok := FindPlayer(o.Players, v.Player)
		return verdict(stats.Goals >= 1 || stats.Assists >= 1, ok)
	case model.TripleCombo:
		hit, ok := combo(model.OutcomeCombo{Results: v.Results}, o)
		line, lineOK := overUnder(v.Side, v.Line, float64(o.Goals()))
		return verdict(hit && line && o.BothScored() == v.BothScore, ok && lineOK)
	default:
		return model.ResolutionUnresolvable
	}
}

// combo reports whether the match result is covered by one of the tokens
// and the optional goal range. ok is false when inputs are missing.
func combo(v model.OutcomeCombo, o *model.MatchOutcome) (hit, ok bool) {
	result := strings.ToUpper(strings.TrimSpace(o.Result))
	if len(v.Results) == 0 || !validResult(result) {
		return false, false
	}
	for _, token := range v.Results {
		if strings.Contains(strings.ToUpper(token), result) {
			hit = true
			break
		}
	}
	if v.TotalGoals != nil {
		if v.TotalGoals.Min > v.TotalGoals.Max {
			return false, false
		}
		hit = hit && v.TotalGoals.Contains(o.Goals())
	}
	return hit, true
}

func overUnder(side model.Side, line, value float64) (hit, ok bool) {
	switch side {
	case model.SideOver:
		return value > line, true
	case model.SideUnder:
		return value < line, true
	}
	return false, false
}

func validResult(r string) bool {
	return r == model.ResultHome || r == model.ResultDraw || r == model.ResultAway
}

func verdict(hit, ok bool) model.Resolution {
	switch {
	case !ok:
		return model.ResolutionUnresolvable
	case hit:
		return model.ResolutionWon
	default:
		return model.ResolutionLost
	}
}
