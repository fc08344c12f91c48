// Package model defines the persisted game document for the matchday bot.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// RoundStatus is the lifecycle state of a matchday.
type RoundStatus string

// Round statuses. A round only ever moves forward through these.
const (
	StatusAssigned RoundStatus = "assigned"
	StatusStarted  RoundStatus = "started"
	StatusFinished RoundStatus = "finished"
)

// Resolution is the settlement outcome of a wager.
type Resolution string

// Wager resolutions.
const (
	ResolutionPending      Resolution = "pending"
	ResolutionWon          Resolution = "won"
	ResolutionLost         Resolution = "lost"
	ResolutionUnresolvable Resolution = "unresolvable"
)

// UnmarshalText accepts the current values plus the legacy Italian ones
// written by older versions of the bot ("persa", "vinta").
func (r *Resolution) UnmarshalText(b []byte) error {
	switch v := Resolution(b); v {
	case ResolutionPending, ResolutionWon, ResolutionLost, ResolutionUnresolvable:
		*r = v
	case "", "in_attesa":
		*r = ResolutionPending
	case "persa":
		*r = ResolutionLost
	case "vinta":
		*r = ResolutionWon
	case "non_verificabile":
		*r = ResolutionUnresolvable
	default:
		return fmt.Errorf("unknown wager resolution %q", string(b))
	}
	return nil
}

// IsFinal reports whether the wager has been settled as won or lost.
func (r Resolution) IsFinal() bool {
	return r == ResolutionWon || r == ResolutionLost
}

// Participant holds a player's running totals. The map key in Document.Players
// is the participant's stable handle (e.g. a Telegram @username).
type Participant struct {
	Name         string `json:"name"`
	Points       int    `json:"points"`
	WildcardUsed int    `json:"wildcard_used"`
	Debt         int64  `json:"debt"`
	Paid         int64  `json:"paid"`
}

// Outstanding returns the debt not yet paid.
func (p *Participant) Outstanding() int64 {
	return p.Debt - p.Paid
}

// PinnedMessage references the chat message summarizing a round.
type PinnedMessage struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Round is one matchday: who plays which match and what they bet.
type Round struct {
	Assignments map[string]string `json:"assignments"` // handle -> match
	Leftover    []string          `json:"leftover"`
	Bets        map[string]*Wager `json:"bets"` // handle -> wager
	Status      RoundStatus       `json:"status"`
	Settled     bool              `json:"settled"`
	Pinned      *PinnedMessage    `json:"pinned_message,omitempty"`
}

// Losers returns the handles whose wager in this round was lost, sorted.
func (r *Round) Losers() []string {
	var losers []string
	for handle, w := range r.Bets {
		if w != nil && w.Resolution == ResolutionLost {
			losers = append(losers, handle)
		}
	}
	sort.Strings(losers)
	return losers
}

// SharedPool is the communal fund (malloppo).
type SharedPool struct {
	WrongPlays     int64 `json:"giocate_sbagliate"`
	JollyPenalties int64 `json:"penali_jolly"`
	GroupPlays     int64 `json:"giocate_gruppo"`
}

// Total returns the sum of all pool counters.
func (p SharedPool) Total() int64 {
	return p.WrongPlays + p.JollyPenalties + p.GroupPlays
}

// Document is the whole persisted game state.
type Document struct {
	Players map[string]*Participant `json:"players"`
	Rounds  map[int]*Round          `json:"bets"`
	Pool    SharedPool              `json:"malloppo"`
	History RoundNumbers            `json:"giornate"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Players: make(map[string]*Participant),
		Rounds:  make(map[int]*Round),
		History: RoundNumbers{},
	}
}

// ErrMalformedDocument is returned for decoded documents that hold null
// participants or rounds.
var ErrMalformedDocument = errors.New("malformed document")

// Normalize fills nil maps left over by decoding partial documents.
func (d *Document) Normalize() error {
	if d.Players == nil {
		d.Players = make(map[string]*Participant)
	}
	if d.Rounds == nil {
		d.Rounds = make(map[int]*Round)
	}
	if d.History == nil {
		d.History = RoundNumbers{}
	}
	for handle, p := range d.Players {
		if p == nil {
			return fmt.Errorf("%w: participant %s is null", ErrMalformedDocument, handle)
		}
	}
	for n, r := range d.Rounds {
		if r == nil {
			return fmt.Errorf("%w: round %d is null", ErrMalformedDocument, n)
		}
		if r.Assignments == nil {
			r.Assignments = make(map[string]string)
		}
		if r.Bets == nil {
			r.Bets = make(map[string]*Wager)
		}
		if r.Status == "" {
			r.Status = StatusFinished
		}
	}
	return nil
}

// LatestRound returns the round with the highest number.
func (d *Document) LatestRound() (int, *Round, bool) {
	latest := 0
	for n := range d.Rounds {
		if n > latest {
			latest = n
		}
	}
	if latest == 0 {
		return 0, nil, false
	}
	return latest, d.Rounds[latest], true
}

// EnsurePlayer creates the participant if missing and keeps its display name current.
func (d *Document) EnsurePlayer(handle, name string) *Participant {
	p, ok := d.Players[handle]
	if !ok {
		p = &Participant{Name: name}
		d.Players[handle] = p
	}
	if name != "" {
		p.Name = name
	}
	return p
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() (*Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	if err := out.Normalize(); err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return &out, nil
}

// RoundNumbers is the ordered set of rounds ever allocated. Old documents
// stored it as a map ({"1": {}}); both shapes are accepted on read and the
// list shape is always written.
type RoundNumbers []int

// UnmarshalJSON decodes either the list or the map shape.
func (r *RoundNumbers) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = RoundNumbers{}
		return nil
	}

	var numbers []int
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &numbers); err != nil {
			return fmt.Errorf("failed to decode round list: %w", err)
		}
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return fmt.Errorf("failed to decode round map: %w", err)
		}
		for key := range keyed {
			n, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("invalid round key %q: %w", key, err)
			}
			numbers = append(numbers, n)
		}
	default:
		return fmt.Errorf("unsupported round history shape: %s", string(trimmed))
	}

	*r = RoundNumbers{}.Add(numbers...)
	return nil
}

// MarshalJSON always writes the list shape.
func (r RoundNumbers) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(r))
}

// Add returns the set with the given rounds included, sorted ascending.
func (r RoundNumbers) Add(numbers ...int) RoundNumbers {
	seen := make(map[int]bool, len(r)+len(numbers))
	out := make(RoundNumbers, 0, len(r)+len(numbers))
	for _, n := range append(append([]int{}, r...), numbers...) {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Contains reports whether n is in the set.
func (r RoundNumbers) Contains(n int) bool {
	for _, v := range r {
		if v == n {
			return true
		}
	}
	return false
}

// Max returns the highest round number, or 0 for an empty set.
func (r RoundNumbers) Max() int {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}
