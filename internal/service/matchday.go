// Package service provides the transaction boundaries around the matchday
// game: every operation loads the document, runs the core rules, saves the
// result and then publishes events and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"matchday-bot/internal/events"
	"matchday-bot/internal/game/matchday"
	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/metrics"
	"matchday-bot/internal/model"
	"matchday-bot/internal/outcome"
	"matchday-bot/internal/pkg/lock"
	"matchday-bot/internal/repository"
)

// GroupHandle is the journal handle used for group-wager contributions.
const GroupHandle = "@gruppo"

// Player seeds one participant of the game.
type Player struct {
	Handle string
	Name   string
}

// Journal records money movements. It is optional.
type Journal interface {
	Record(ctx context.Context, entries ...model.JournalEntry) error
	GetByHandle(ctx context.Context, handle string, limit int) ([]*model.JournalEntry, error)
	TotalsByKind(ctx context.Context, handle string) (map[string]int64, error)
}

// Dependencies holds everything MatchdayService needs. Store and Schedule
// are required; the rest fall back to no-op or default implementations.
type Dependencies struct {
	Store            repository.StateStore
	Schedule         repository.ScheduleSource
	Provider         outcome.Provider
	Catalog          *verify.Catalog
	Evaluator        *verify.Evaluator
	Rules            matchday.Rules
	MissingWagerLoss bool
	Players          []Player
	Publisher        events.Publisher
	Metrics          *metrics.GameMetrics
	Journal          Journal
	Locks            *lock.KeyLock
	LockKey          string
	LockTimeout      time.Duration
	Rand             *rand.Rand
}

// MatchdayService runs the game's mutating operations.
type MatchdayService struct {
	store            repository.StateStore
	schedule         repository.ScheduleSource
	provider         outcome.Provider
	catalog          *verify.Catalog
	evaluator        *verify.Evaluator
	rules            matchday.Rules
	missingWagerLoss bool
	players          []Player
	publisher        events.Publisher
	metrics          *metrics.GameMetrics
	journal          Journal
	locks            *lock.KeyLock
	lockKey          string
	lockTimeout      time.Duration
	rng              *rand.Rand
}

// NewMatchdayService creates a new MatchdayService instance.
func NewMatchdayService(deps Dependencies) *MatchdayService {
	s := &MatchdayService{
		store:            deps.Store,
		schedule:         deps.Schedule,
		provider:         deps.Provider,
		catalog:          deps.Catalog,
		evaluator:        deps.Evaluator,
		rules:            deps.Rules,
		missingWagerLoss: deps.MissingWagerLoss,
		players:          deps.Players,
		publisher:        deps.Publisher,
		metrics:          deps.Metrics,
		journal:          deps.Journal,
		locks:            deps.Locks,
		lockKey:          deps.LockKey,
		lockTimeout:      deps.LockTimeout,
		rng:              deps.Rand,
	}
	if s.catalog == nil {
		s.catalog = verify.DefaultCatalog()
	}
	if s.evaluator == nil {
		s.evaluator = verify.NewEvaluator()
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	if s.locks == nil {
		s.locks = lock.NewKeyLock()
	}
	if s.lockKey == "" {
		s.lockKey = repository.DefaultStateKey
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = 5 * time.Second
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return s
}

// Catalog returns the verification catalog used to parse check data.
func (s *MatchdayService) Catalog() *verify.Catalog {
	return s.catalog
}

// Rules returns the active rule set.
func (s *MatchdayService) Rules() matchday.Rules {
	return s.rules
}

// mutate runs one serialized load, change and save cycle. Nothing is saved
// when fn fails.
func (s *MatchdayService) mutate(ctx context.Context, fn func(doc *model.Document) error) (*model.Document, error) {
	var saved *model.Document
	err := s.locks.WithLockContext(ctx, s.lockKey, s.lockTimeout, func() error {
		doc, err := s.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}
		for _, p := range s.players {
			doc.EnsurePlayer(p.Handle, p.Name)
		}
		if err := fn(doc); err != nil {
			return err
		}
		if err := s.store.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
		saved = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observeBalances(saved)
	return saved, nil
}

func (s *MatchdayService) observeBalances(doc *model.Document) {
	debts := make(map[string]int64, len(doc.Players))
	for handle, p := range doc.Players {
		debts[handle] = p.Outstanding()
	}
	s.metrics.SetBalances(debts, doc.Pool.Total())
}

func (s *MatchdayService) publish(ctx context.Context, eventType string, round int, payload any) {
	if err := s.publisher.Publish(ctx, events.New(eventType, round, payload)); err != nil {
		log.Warn().Err(err).Str("event", eventType).Int("round", round).Msg("Failed to publish event")
	}
}

func (s *MatchdayService) record(ctx context.Context, entries ...model.JournalEntry) {
	if s.journal == nil || len(entries) == 0 {
		return
	}
	if err := s.journal.Record(ctx, entries...); err != nil {
		log.Warn().Err(err).Int("entries", len(entries)).Msg("Failed to record journal entries")
	}
}

func entry(handle string, round int, amount int64, kind, description string) model.JournalEntry {
	return model.JournalEntry{
		Handle:      handle,
		Round:       round,
		Amount:      amount,
		Kind:        kind,
		Description: &description,
	}
}

// Seed stores the configured participants.
func (s *MatchdayService) Seed(ctx context.Context) error {
	_, err := s.mutate(ctx, func(*model.Document) error { return nil })
	return err
}

// Draw allocates the next round from the schedule.
func (s *MatchdayService) Draw(ctx context.Context) (int, *model.Round, error) {
	var number int
	var round *model.Round
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		number = matchday.NextRoundNumber(doc)
		matches, err := s.schedule.Matches(ctx, number)
		if err != nil {
			if errors.Is(err, repository.ErrScheduleNotFound) {
				return fmt.Errorf("%w: round %d", matchday.ErrRoundNotScheduled, number)
			}
			return fmt.Errorf("failed to read schedule: %w", err)
		}
		round, err = matchday.Allocate(doc, number, matches, handles(doc), s.rng)
		return err
	})
	if err != nil {
		return number, nil, err
	}

	log.Info().Int("round", number).Int("participants", len(round.Assignments)).Msg("Round allocated")
	s.metrics.RoundAllocated()
	s.publish(ctx, events.TypeRoundAllocated, number, round.Assignments)
	return number, round, nil
}

// StartResult describes a started round.
type StartResult struct {
	Round   int
	Charged []string
}

// Start closes the latest round to new wagers. With MissingWagerLoss set,
// participants without a wager are charged a lost placeholder.
func (s *MatchdayService) Start(ctx context.Context) (*StartResult, error) {
	res := &StartResult{}
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		number, err := matchday.Begin(doc)
		if err != nil {
			return err
		}
		res.Round = number
		if s.missingWagerLoss {
			res.Charged, err = matchday.ChargeMissingWagers(doc, s.rules)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]model.JournalEntry, 0, len(res.Charged))
	for _, handle := range res.Charged {
		entries = append(entries, entry(handle, res.Round, s.rules.LossCharge, model.EntryLossCharge, "giocata mancante"))
	}
	s.record(ctx, entries...)

	log.Info().Int("round", res.Round).Strs("charged", res.Charged).Msg("Round started")
	s.metrics.Transition(string(model.StatusStarted))
	s.publish(ctx, events.TypeRoundStarted, res.Round, res.Charged)
	return res, nil
}

// End finishes the latest round.
func (s *MatchdayService) End(ctx context.Context) (int, error) {
	var number int
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		var err error
		number, err = matchday.End(doc)
		return err
	})
	if err != nil {
		return number, err
	}

	log.Info().Int("round", number).Msg("Round finished")
	s.metrics.Transition(string(model.StatusFinished))
	s.publish(ctx, events.TypeRoundFinished, number, nil)
	return number, nil
}

// Submit records a wager for the participant.
func (s *MatchdayService) Submit(ctx context.Context, handle, text string) (*matchday.Submission, error) {
	var sub *matchday.Submission
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		var err error
		sub, err = matchday.Submit(doc, handle, text, s.rules)
		return err
	})
	if err != nil {
		return nil, err
	}

	if sub.Penalized {
		s.record(ctx, entry(handle, sub.Round, s.rules.JollyPenalty, model.EntryJollyPenalty, "jolly oltre il limite"))
	}
	log.Info().
		Str("handle", handle).
		Int("round", sub.Round).
		Str("odds", sub.Wager.Odds.String()).
		Bool("jolly", sub.Wager.Jolly).
		Bool("penalized", sub.Penalized).
		Msg("Wager submitted")
	s.metrics.WagerAccepted(sub.Wager.Jolly, sub.Penalized)
	s.publish(ctx, events.TypeWagerSubmitted, sub.Round, map[string]any{
		"handle": handle,
		"wager":  sub.Wager,
	})
	return sub, nil
}

// AttachVerification parses data for the given check type and attaches it
// to the participant's current wager.
func (s *MatchdayService) AttachVerification(ctx context.Context, handle string, t model.VerificationType, data string) (*model.Wager, error) {
	check, err := s.catalog.Parse(t, data)
	if err != nil {
		return nil, err
	}
	var wager *model.Wager
	_, err = s.mutate(ctx, func(doc *model.Document) error {
		wager, err = matchday.AttachVerification(doc, handle, check, s.rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("handle", handle).Str("type", string(check.Type())).Msg("Verification attached")
	return wager, nil
}

// AttachFallback records the alternative wager used when the primary
// wager's player does not take part in the match.
func (s *MatchdayService) AttachFallback(ctx context.Context, handle, text string, t model.VerificationType, data string) (*model.Wager, error) {
	check, err := s.catalog.Parse(t, data)
	if err != nil {
		return nil, err
	}
	var fallback *model.Wager
	_, err = s.mutate(ctx, func(doc *model.Document) error {
		fallback, err = matchday.AttachFallback(doc, handle, text, check, s.rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("handle", handle).Str("type", string(check.Type())).Msg("Fallback attached")
	return fallback, nil
}

// Withdraw removes the participant's wager from the assigned round.
func (s *MatchdayService) Withdraw(ctx context.Context, handle string) error {
	var number int
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		number, _, _ = doc.LatestRound()
		return matchday.Withdraw(doc, handle)
	})
	if err != nil {
		return err
	}
	log.Info().Str("handle", handle).Int("round", number).Msg("Wager withdrawn")
	s.publish(ctx, events.TypeWagerWithdrawn, number, map[string]string{"handle": handle})
	return nil
}

// VerifyReport lists how the latest round's wagers were resolved.
type VerifyReport struct {
	Round        int
	Won          []string
	Lost         []string
	Unresolvable []string
	Missing      []string
	Settled      []string
}

// Verify resolves every unsettled wager of the latest round against the
// outcome of the participant's match. Lookup failures leave the wager
// unresolvable so a later run can retry it.
func (s *MatchdayService) Verify(ctx context.Context) (*VerifyReport, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no outcome provider configured", matchday.ErrValidation)
	}

	type evaluation struct{ check, res string }
	var evaluations []evaluation
	report := &VerifyReport{}
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		evaluations = evaluations[:0]
		number, round, ok := doc.LatestRound()
		if !ok {
			return matchday.ErrNothingAllocated
		}
		if round.Status == model.StatusAssigned {
			return fmt.Errorf("%w: round %d", matchday.ErrNotYetStarted, number)
		}
		*report = VerifyReport{Round: number}

		outcomes := make(map[string]*model.MatchOutcome)
		for _, handle := range sortedKeys(round.Assignments) {
			match := round.Assignments[handle]
			wager := round.Bets[handle]
			if wager == nil {
				report.Missing = append(report.Missing, handle)
				continue
			}
			if wager.Resolution.IsFinal() {
				report.Settled = append(report.Settled, handle)
				continue
			}

			out, seen := outcomes[match]
			if !seen {
				out = s.lookup(ctx, match)
				outcomes[match] = out
			}

			res := model.ResolutionUnresolvable
			if out != nil {
				res = s.evaluator.Evaluate(wager, out)
			}
			if err := matchday.ApplyResolution(doc, handle, wager, res, s.rules); err != nil {
				return err
			}
			evaluations = append(evaluations, evaluation{checkType(wager), string(res)})

			switch res {
			case model.ResolutionWon:
				report.Won = append(report.Won, handle)
			case model.ResolutionLost:
				report.Lost = append(report.Lost, handle)
			default:
				report.Unresolvable = append(report.Unresolvable, handle)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range evaluations {
		s.metrics.Evaluated(e.check, e.res)
	}
	s.recordLosses(ctx, report.Round, report.Lost, "giocata persa")
	log.Info().
		Int("round", report.Round).
		Int("won", len(report.Won)).
		Int("lost", len(report.Lost)).
		Int("unresolvable", len(report.Unresolvable)).
		Msg("Round verified")
	s.publish(ctx, events.TypeRoundSettled, report.Round, report)
	return report, nil
}

func (s *MatchdayService) lookup(ctx context.Context, match string) *model.MatchOutcome {
	out, err := s.provider.Lookup(ctx, match)
	switch {
	case err == nil:
		s.metrics.OutcomeLookup("ok")
		return out
	case errors.Is(err, outcome.ErrNotFound):
		s.metrics.OutcomeLookup("not_found")
		log.Warn().Str("match", match).Msg("Match outcome not available")
	default:
		s.metrics.OutcomeLookup("error")
		log.Error().Err(err).Str("match", match).Msg("Failed to fetch match outcome")
	}
	return nil
}

// ManualOutcome resolves the latest round from an admin-supplied list of losers.
func (s *MatchdayService) ManualOutcome(ctx context.Context, losers []string) (*matchday.ManualReport, error) {
	var report *matchday.ManualReport
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		var err error
		report, err = matchday.ApplyManualOutcome(doc, losers, s.rules)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordLosses(ctx, report.Round, report.Lost, "esito manuale")
	log.Info().Int("round", report.Round).Strs("lost", report.Lost).Msg("Manual outcome applied")
	s.publish(ctx, events.TypeRoundSettled, report.Round, report)
	return report, nil
}

func (s *MatchdayService) recordLosses(ctx context.Context, round int, handles []string, description string) {
	entries := make([]model.JournalEntry, 0, len(handles))
	for _, handle := range handles {
		entries = append(entries, entry(handle, round, s.rules.LossCharge, model.EntryLossCharge, description))
	}
	s.record(ctx, entries...)
}

// RecordPayment registers money paid back by a participant.
func (s *MatchdayService) RecordPayment(ctx context.Context, handle string, amount int64) (*model.Participant, error) {
	var player model.Participant
	var number int
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		number, _, _ = doc.LatestRound()
		p, err := matchday.RecordPayment(doc, handle, amount)
		if err != nil {
			return err
		}
		player = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, entry(handle, number, amount, model.EntryPayment, "pagamento"))
	log.Info().Str("handle", handle).Int64("amount", amount).Msg("Payment recorded")
	s.metrics.PaymentRecorded()
	s.publish(ctx, events.TypePaymentMade, number, map[string]any{"handle": handle, "amount": amount})
	return &player, nil
}

// RecordGroupWager adds a group-wager contribution to the pool.
func (s *MatchdayService) RecordGroupWager(ctx context.Context, amount int64) (model.SharedPool, error) {
	var pool model.SharedPool
	var number int
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		number, _, _ = doc.LatestRound()
		if err := matchday.RecordGroupWager(doc, amount); err != nil {
			return err
		}
		pool = doc.Pool
		return nil
	})
	if err != nil {
		return pool, err
	}
	s.record(ctx, entry(GroupHandle, number, amount, model.EntryGroupWager, "giocata di gruppo"))
	log.Info().Int64("amount", amount).Msg("Group wager recorded")
	return pool, nil
}

// SetPinnedMessage remembers the chat message announcing the latest round.
func (s *MatchdayService) SetPinnedMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.mutate(ctx, func(doc *model.Document) error {
		_, round, err := matchday.CurrentRound(doc)
		if err != nil {
			return err
		}
		round.Pinned = &model.PinnedMessage{ChatID: chatID, MessageID: messageID}
		return nil
	})
	return err
}

func checkType(w *model.Wager) string {
	if w.Check == nil {
		return "none"
	}
	return string(w.Check.Type())
}

func handles(doc *model.Document) []string {
	out := make([]string, 0, len(doc.Players))
	for h := range doc.Players {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
