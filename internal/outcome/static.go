package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"matchday-bot/internal/model"
)

// StaticProvider serves outcomes from memory, typically loaded from a JSON
// file of the form {"Inter-Milan": {...outcome...}}.
type StaticProvider struct {
	outcomes map[string]*model.MatchOutcome
}

// NewStaticProvider creates a provider over the given outcomes.
func NewStaticProvider(outcomes map[string]*model.MatchOutcome) *StaticProvider {
	if outcomes == nil {
		outcomes = make(map[string]*model.MatchOutcome)
	}
	return &StaticProvider{outcomes: outcomes}
}

// LoadStaticProvider reads and validates every outcome in the file at path.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcomes file: %w", err)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode outcomes file: %w", err)
	}

	outcomes := make(map[string]*model.MatchOutcome, len(entries))
	for match, entry := range entries {
		out, err := Decode(entry)
		if err != nil {
			return nil, fmt.Errorf("outcome for %q: %w", match, err)
		}
		outcomes[match] = out
	}
	return NewStaticProvider(outcomes), nil
}

// Lookup returns the stored outcome.
func (p *StaticProvider) Lookup(ctx context.Context, matchID string) (*model.MatchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, ok := p.outcomes[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	return out, nil
}
