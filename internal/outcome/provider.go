// Package outcome looks up structured match results from external sources.
package outcome

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"matchday-bot/internal/model"
)

// ErrNotFound is returned when the source has no outcome for a match.
var ErrNotFound = errors.New("match outcome not found")

// Provider returns the outcome of a match.
type Provider interface {
	Lookup(ctx context.Context, matchID string) (*model.MatchOutcome, error)
}

//go:embed schema/outcome.json
var outcomeSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("outcome.json", bytes.NewReader(outcomeSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("outcome.json")
	})
	return compiledSchema, schemaErr
}

// Decode validates raw against the outcome schema and decodes it.
func Decode(raw []byte) (*model.MatchOutcome, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile outcome schema: %w", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode outcome: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("invalid outcome: %w", err)
	}

	var out model.MatchOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode outcome: %w", err)
	}
	return &out, nil
}
