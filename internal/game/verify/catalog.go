package verify

import (
	"fmt"
	"sync"

	"matchday-bot/internal/model"
)

// Entry describes one verification type offered to players.
type Entry struct {
	Type  model.VerificationType
	Label string
	Hint  string
	Parse func(data string) (model.Verification, error)
	// Player is true when the check names a player, enabling a fallback.
	Player bool
}

// Catalog manages the verification types players can pick from.
// Entries keep their registration order for keyboard layout.
type Catalog struct {
	entries map[model.VerificationType]Entry
	order   []model.VerificationType
	mu      sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[model.VerificationType]Entry),
	}
}

// Register adds an entry, replacing any entry with the same type.
func (c *Catalog) Register(e Entry) error {
	if e.Type == "" {
		return fmt.Errorf("verification type cannot be empty")
	}
	if e.Parse == nil {
		return fmt.Errorf("verification type %s has no parser", e.Type)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[e.Type]; !exists {
		c.order = append(c.order, e.Type)
	}
	c.entries[e.Type] = e
	return nil
}

// Get retrieves an entry, resolving legacy tags.
func (c *Catalog) Get(t model.VerificationType) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[t.Canonical()]
	return e, ok
}

// List returns the entries in registration order.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.order))
	for _, t := range c.order {
		entries = append(entries, c.entries[t])
	}
	return entries
}

// Parse turns the free-text data for a type into its typed check.
func (c *Catalog) Parse(t model.VerificationType, data string) (model.Verification, error) {
	e, ok := c.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVerificationType, t)
	}
	return e.Parse(data)
}

// DefaultCatalog returns a catalog with every built-in verification type.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, e := range []Entry{
		{Type: model.VerifyOutcomeCombo, Label: "Esito", Hint: "<esiti> [min-max], es. 1X 2-4", Parse: parseOutcomeCombo},
		{Type: model.VerifyOutcomeComboGoalBoth, Label: "Esito + Goal/NoGoal", Hint: "<esiti> goal|nogoal, es. 1 goal", Parse: parseGoalBoth},
		{Type: model.VerifyOutcomeComboOverUnder, Label: "Esito + Over/Under", Hint: "<esiti> over|under <linea>, es. X2 over 1.5", Parse: parseOverUnder},
		{Type: model.VerifyBothTeamsGoalRange, Label: "Multigol squadre", Hint: "<casa min-max> <ospite min-max>, es. 1-2 0-1", Parse: parseBothTeamsRange},
		{Type: model.VerifyMatchStatistic, Label: "Statistica partita", Hint: "<statistica> over|under <soglia>, es. corner over 8.5", Parse: parseMatchStatistic},
		{Type: model.VerifyPlayerStatistic, Label: "Statistica giocatore", Hint: "<giocatore> <statistica> <soglia>, es. Leao tiri_in_porta 2", Parse: parsePlayerStatistic, Player: true},
		{Type: model.VerifyCardBooking, Label: "Ammonizione", Hint: "<giocatore>, es. Barella", Parse: parseCardBooking, Player: true},
		{Type: model.VerifyPlayerGoalOrAssist, Label: "Gol o assist", Hint: "<giocatore>, es. Lautaro Martinez", Parse: parseGoalOrAssist, Player: true},
		{Type: model.VerifyTripleCombo, Label: "Combo tripla", Hint: "<esiti> over|under <linea> goal|nogoal, es. 1X over 2.5 goal", Parse: parseTripleCombo},
	} {
		// Built-in entries always carry a type and a parser.
		_ = c.Register(e)
	}
	return c
}
