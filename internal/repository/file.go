package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"matchday-bot/internal/model"
)

// FileStore keeps the game document in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document. A missing file yields an empty document.
func (s *FileStore) Load(ctx context.Context) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", s.path).Msg("State file missing, starting empty")
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return decodeDocument(raw)
}

// Save writes the document through a temporary file and a rename, so a
// crash never leaves a half-written document behind.
func (s *FileStore) Save(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// FileSchedule reads the schedule from a JSON file of the form
// {"1": ["Inter-Milan", ...], "2": [...]}.
type FileSchedule struct {
	path string
}

// NewFileSchedule creates a FileSchedule backed by path.
func NewFileSchedule(path string) *FileSchedule {
	return &FileSchedule{path: path}
}

// Matches returns the matches for a round in file order.
func (s *FileSchedule) Matches(ctx context.Context, round int) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	matches, ok := all[round]
	if !ok || len(matches) == 0 {
		return nil, fmt.Errorf("%w: round %d", ErrScheduleNotFound, round)
	}
	return matches, nil
}

// All returns the whole schedule keyed by round.
func (s *FileSchedule) All(ctx context.Context) (map[int][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	var keyed map[string][]string
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	out := make(map[int][]string, len(keyed))
	for key, matches := range keyed {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule round %q: %w", key, err)
		}
		out[n] = matches
	}
	return out, nil
}

