// Package repository provides persistence for the game document, the match
// schedule and the money journal.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"matchday-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrScheduleNotFound = errors.New("round not in schedule")
)

// StateStore loads and saves the whole game document. Implementations do not
// serialize writers; callers run one read-modify-write cycle at a time.
type StateStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

// ScheduleSource returns the ordered matches scheduled for a round.
type ScheduleSource interface {
	Matches(ctx context.Context, round int) ([]string, error)
}

// decodeDocument parses a persisted document, accepting legacy shapes.
func decodeDocument(raw []byte) (*model.Document, error) {
	doc := model.NewDocument()
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func encodeDocument(doc *model.Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}
