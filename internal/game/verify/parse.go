package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/model"
)

// Parse errors.
var (
	ErrUnknownVerificationType   = fmt.Errorf("%w: unknown verification type", matchday.ErrValidation)
	ErrMalformedVerificationData = fmt.Errorf("%w: malformed verification data", matchday.ErrValidation)
)

var rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// resultAliases normalizes the result tokens players may type.
var resultAliases = map[string]string{
	"1": "1", "X": "X", "2": "2",
	"1X": "1X", "X1": "1X",
	"X2": "X2", "2X": "X2",
	"12": "12", "21": "12",
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedVerificationData, fmt.Sprintf(format, args...))
}

func parseResults(fields []string) ([]string, error) {
	var out []string
	for _, f := range fields {
		for _, part := range strings.FieldsFunc(f, func(r rune) bool { return r == ',' || r == '/' }) {
			token, ok := resultAliases[strings.ToUpper(part)]
			if !ok {
				return nil, malformed("invalid result %q", part)
			}
			out = append(out, token)
		}
	}
	if len(out) == 0 {
		return nil, malformed("at least one result among 1, X, 2, 1X, X2, 12 is required")
	}
	return out, nil
}

func parseRange(s string) (model.GoalRange, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return model.GoalRange{}, malformed("invalid range %q, expected min-max", s)
	}
	lo, _ := strconv.Atoi(m[1])
	hi, _ := strconv.Atoi(m[2])
	if lo > hi {
		return model.GoalRange{}, malformed("range %q has min above max", s)
	}
	return model.GoalRange{Min: lo, Max: hi}, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, malformed("invalid number %q", s)
	}
	return v, nil
}

func parseSide(s string) (model.Side, error) {
	switch strings.ToLower(s) {
	case "over", "o":
		return model.SideOver, nil
	case "under", "u":
		return model.SideUnder, nil
	}
	return "", malformed("expected over or under, got %q", s)
}

func parseBothScore(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "goal", "gg", "gol":
		return true, nil
	case "nogoal", "ng", "nogol":
		return false, nil
	}
	return false, malformed("expected goal or nogoal, got %q", s)
}

func parseOutcomeCombo(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	var goals *model.GoalRange
	if n := len(fields); n > 1 && rangePattern.MatchString(fields[n-1]) {
		r, err := parseRange(fields[n-1])
		if err != nil {
			return nil, err
		}
		goals = &r
		fields = fields[:n-1]
	}
	results, err := parseResults(fields)
	if err != nil {
		return nil, err
	}
	return model.OutcomeCombo{Results: results, TotalGoals: goals}, nil
}

func parseGoalBoth(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) < 2 {
		return nil, malformed("expected '<results> goal|nogoal'")
	}
	both, err := parseBothScore(fields[len(fields)-1])
	if err != nil {
		return nil, err
	}
	results, err := parseResults(fields[:len(fields)-1])
	if err != nil {
		return nil, err
	}
	return model.OutcomeComboGoalBoth{OutcomeCombo: model.OutcomeCombo{Results: results}, BothScore: both}, nil
}

func parseOverUnder(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) < 3 {
		return nil, malformed("expected '<results> over|under <line>'")
	}
	n := len(fields)
	side, err := parseSide(fields[n-2])
	if err != nil {
		return nil, err
	}
	line, err := parseNumber(fields[n-1])
	if err != nil {
		return nil, err
	}
	results, err := parseResults(fields[:n-2])
	if err != nil {
		return nil, err
	}
	return model.OutcomeComboOverUnder{OutcomeCombo: model.OutcomeCombo{Results: results}, Side: side, Line: line}, nil
}

func parseBothTeamsRange(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) != 2 {
		return nil, malformed("expected '<home min-max> <away min-max>'")
	}
	home, err := parseRange(fields[0])
	if err != nil {
		return nil, err
	}
	away, err := parseRange(fields[1])
	if err != nil {
		return nil, err
	}
	return model.BothTeamsGoalRange{Home: home, Away: away}, nil
}

func parseMatchStatistic(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) < 3 {
		return nil, malformed("expected '<statistic> over|under <threshold>'")
	}
	n := len(fields)
	side, err := parseSide(fields[n-2])
	if err != nil {
		return nil, err
	}
	threshold, err := parseNumber(fields[n-1])
	if err != nil {
		return nil, err
	}
	return model.MatchStatisticThreshold{
		Statistic: model.StatisticKey(strings.Join(fields[:n-2], " ")),
		Side:      side,
		Threshold: threshold,
	}, nil
}

func parsePlayerStatistic(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) < 3 {
		return nil, malformed("expected '<player> <statistic> <threshold>'")
	}
	n := len(fields)
	threshold, err := parseNumber(fields[n-1])
	if err != nil {
		return nil, err
	}
	stat := model.StatisticKey(fields[n-2])
	if _, ok := (model.PlayerStats{}).Stat(stat); !ok {
		return nil, malformed("unknown player statistic %q", fields[n-2])
	}
	return model.PlayerStatisticThreshold{
		Player:    strings.Join(fields[:n-2], " "),
		Statistic: stat,
		Threshold: threshold,
	}, nil
}

func parsePlayerName(data string) (string, error) {
	name := strings.Join(strings.Fields(data), " ")
	if name == "" {
		return "", malformed("player name required")
	}
	return name, nil
}

func parseCardBooking(data string) (model.Verification, error) {
	name, err := parsePlayerName(data)
	if err != nil {
		return nil, err
	}
	return model.CardBooking{Player: name}, nil
}

func parseGoalOrAssist(data string) (model.Verification, error) {
	name, err := parsePlayerName(data)
	if err != nil {
		return nil, err
	}
	return model.PlayerGoalOrAssist{Player: name}, nil
}

func parseTripleCombo(data string) (model.Verification, error) {
	fields := strings.Fields(data)
	if len(fields) < 4 {
		return nil, malformed("expected '<results> over|under <line> goal|nogoal'")
	}
	n := len(fields)
	side, err := parseSide(fields[n-3])
	if err != nil {
		return nil, err
	}
	line, err := parseNumber(fields[n-2])
	if err != nil {
		return nil, err
	}
	both, err := parseBothScore(fields[n-1])
	if err != nil {
		return nil, err
	}
	results, err := parseResults(fields[:n-3])
	if err != nil {
		return nil, err
	}
	return model.TripleCombo{Results: results, Side: side, Line: line, BothScore: both}, nil
}

