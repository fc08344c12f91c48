package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/model"
	"matchday-bot/internal/repository"
)

// ErrJournalDisabled is returned when movements are requested without a journal.
var ErrJournalDisabled = errors.New("journal not configured")

// Standing is one row of the leaderboard.
type Standing struct {
	Handle string
	Name   string
	Points int
}

// JollyUsage shows how many jollies a participant has used in the current cycle.
type JollyUsage struct {
	Handle    string
	Name      string
	Used      int
	Remaining int
}

// DebtLine shows what a participant owes.
type DebtLine struct {
	Handle      string
	Name        string
	Debt        int64
	Paid        int64
	Outstanding int64
}

// RoundSummary describes a finished round.
type RoundSummary struct {
	Number  int
	Status  model.RoundStatus
	Losers  []string
	Settled bool
}

// StandingsService answers read-only questions about the game.
type StandingsService struct {
	store   repository.StateStore
	journal Journal
	rules   matchday.Rules
}

// NewStandingsService creates a new StandingsService instance.
func NewStandingsService(store repository.StateStore, journal Journal, rules matchday.Rules) *StandingsService {
	return &StandingsService{store: store, journal: journal, rules: rules}
}

func (s *StandingsService) load(ctx context.Context) (*model.Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return doc, nil
}

// Standings returns participants ordered by points, then by name.
func (s *StandingsService) Standings(ctx context.Context) ([]Standing, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(doc.Players))
	for handle, p := range doc.Players {
		out = append(out, Standing{Handle: handle, Name: displayName(handle, p), Points: p.Points})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Names maps every participant's handle to its display name.
func (s *StandingsService) Names(ctx context.Context) (map[string]string, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(doc.Players))
	for handle, p := range doc.Players {
		names[handle] = displayName(handle, p)
	}
	return names, nil
}

// Jolly returns each participant's jolly usage.
func (s *StandingsService) Jolly(ctx context.Context) ([]JollyUsage, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JollyUsage, 0, len(doc.Players))
	for _, handle := range handles(doc) {
		p := doc.Players[handle]
		out = append(out, JollyUsage{
			Handle:    handle,
			Name:      displayName(handle, p),
			Used:      p.WildcardUsed,
			Remaining: max(s.rules.JollyQuota-p.WildcardUsed, 0),
		})
	}
	return out, nil
}

// Pool returns the shared pool.
func (s *StandingsService) Pool(ctx context.Context) (model.SharedPool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return model.SharedPool{}, err
	}
	return doc.Pool, nil
}

// Debts returns every participant's debt, largest outstanding first.
func (s *StandingsService) Debts(ctx context.Context) ([]DebtLine, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DebtLine, 0, len(doc.Players))
	for handle, p := range doc.Players {
		out = append(out, DebtLine{
			Handle:      handle,
			Name:        displayName(handle, p),
			Debt:        p.Debt,
			Paid:        p.Paid,
			Outstanding: p.Outstanding(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Outstanding != out[j].Outstanding {
			return out[i].Outstanding > out[j].Outstanding
		}
		return out[i].Handle < out[j].Handle
	})
	return out, nil
}

// History returns the finished rounds with their losers, oldest first.
func (s *StandingsService) History(ctx context.Context) ([]RoundSummary, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []RoundSummary
	for number, r := range doc.Rounds {
		if r.Status != model.StatusFinished {
			continue
		}
		out = append(out, RoundSummary{Number: number, Status: r.Status, Losers: r.Losers(), Settled: r.Settled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// CurrentRound returns the latest round.
func (s *StandingsService) CurrentRound(ctx context.Context) (int, *model.Round, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return 0, nil, err
	}
	return matchday.CurrentRound(doc)
}

// Participant returns one participant's totals.
func (s *StandingsService) Participant(ctx context.Context, handle string) (*model.Participant, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := doc.Players[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matchday.ErrUnknownParticipant, handle)
	}
	return p, nil
}

// Movements returns the participant's latest journal entries.
func (s *StandingsService) Movements(ctx context.Context, handle string, limit int) ([]*model.JournalEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.journal.GetByHandle(ctx, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return entries, nil
}

// Totals sums the participant's journal entries per kind.
func (s *StandingsService) Totals(ctx context.Context, handle string) (map[string]int64, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	totals, err := s.journal.TotalsByKind(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to read totals: %w", err)
	}
	return totals, nil
}

func displayName(handle string, p *model.Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return handle
}
