package model

import "strings"

// Match results.
const (
	ResultHome = "1"
	ResultDraw = "X"
	ResultAway = "2"
)

// MatchOutcome is the structured result returned by an outcome provider.
type MatchOutcome struct {
	Result          string                 `json:"result"`
	HomeGoals       int                    `json:"home_goals"`
	AwayGoals       int                    `json:"away_goals"`
	TotalGoals      int                    `json:"total_goals"`
	MatchStatistics map[string]float64     `json:"match_statistics"`
	Players         map[string]PlayerStats `json:"players"`
}

// Goals returns the total goals, derived from the side counts when the
// provider left the total empty.
func (o *MatchOutcome) Goals() int {
	if o.TotalGoals == 0 {
		return o.HomeGoals + o.AwayGoals
	}
	return o.TotalGoals
}

// BothScored reports whether both sides scored at least once.
func (o *MatchOutcome) BothScored() bool {
	return o.HomeGoals > 0 && o.AwayGoals > 0
}

// MatchStatistic looks up a match-level statistic by normalized name.
func (o *MatchOutcome) MatchStatistic(name string) (float64, bool) {
	key := StatisticKey(name)
	for k, v := range o.MatchStatistics {
		if StatisticKey(k) == key {
			return v, true
		}
	}
	return 0, false
}

// PlayerStats holds one player's match statistics.
type PlayerStats struct {
	ShotsOnTarget int `json:"shots_on_target"`
	ShotsTotal    int `json:"shots_total"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	Cards         int `json:"cards"`
	Passes        int `json:"passes"`
	Saves         int `json:"saves"`
}

// statisticAliases maps the Italian names players type in chat.
var statisticAliases = map[string]string{
	"tiri_in_porta": "shots_on_target",
	"tiri":          "shots_total",
	"tiri_totali":   "shots_total",
	"gol":           "goals",
	"assist":        "assists",
	"cartellini":    "cards",
	"passaggi":      "passes",
	"parate":        "saves",
}

// StatisticKey normalizes a statistic name: lower case, underscores for
// spaces, Italian aliases resolved.
func StatisticKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.Join(strings.Fields(strings.ReplaceAll(key, "-", " ")), "_")
	if alias, ok := statisticAliases[key]; ok {
		return alias
	}
	return key
}

// Stat returns the named statistic.
func (p PlayerStats) Stat(name string) (float64, bool) {
	switch StatisticKey(name) {
	case "shots_on_target":
		return float64(p.ShotsOnTarget), true
	case "shots_total":
		return float64(p.ShotsTotal), true
	case "goals":
		return float64(p.Goals), true
	case "assists":
		return float64(p.Assists), true
	case "cards":
		return float64(p.Cards), true
	case "passes":
		return float64(p.Passes), true
	case "saves":
		return float64(p.Saves), true
	}
	return 0, false
}
