package matchday

import (
	"errors"
	"fmt"
)

// Error kinds. Every named failure below wraps exactly one of these, so
// callers can branch with errors.Is on either the kind or the failure.
var (
	ErrValidation        = errors.New("validation error")
	ErrStateConflict     = errors.New("state conflict")
	ErrNotFound          = errors.New("not found")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Allocation errors.
var (
	ErrInsufficientMatches = fmt.Errorf("%w: not enough matches for all participants", ErrResourceExhausted)
	ErrDuplicateRound      = fmt.Errorf("%w: round already allocated", ErrStateConflict)
	ErrPreviousRoundOpen   = fmt.Errorf("%w: previous round is not finished", ErrStateConflict)
	ErrRoundNotScheduled   = fmt.Errorf("%w: round not in schedule", ErrNotFound)
	ErrNoParticipants      = fmt.Errorf("%w: no participants", ErrValidation)
	ErrDuplicateHandle     = fmt.Errorf("%w: participant listed twice", ErrValidation)
)

// Lifecycle errors.
var (
	ErrNotYetAssigned   = fmt.Errorf("%w: no round assigned yet", ErrStateConflict)
	ErrAlreadyStarted   = fmt.Errorf("%w: round already started", ErrStateConflict)
	ErrAlreadyFinished  = fmt.Errorf("%w: round already finished", ErrStateConflict)
	ErrNotYetStarted    = fmt.Errorf("%w: round not started yet", ErrStateConflict)
	ErrNothingAllocated = fmt.Errorf("%w: no round allocated", ErrNotFound)
)

// Ledger errors.
var (
	ErrNoActiveRound       = fmt.Errorf("%w: no active round", ErrNotFound)
	ErrRoundClosed         = fmt.Errorf("%w: round is not accepting wagers", ErrStateConflict)
	ErrMalformedWager      = fmt.Errorf("%w: wager must be '<play> <odds>'", ErrValidation)
	ErrUnknownParticipant  = fmt.Errorf("%w: unknown participant", ErrNotFound)
	ErrNotAssigned         = fmt.Errorf("%w: participant has no match this round", ErrNotFound)
	ErrNoWager             = fmt.Errorf("%w: no wager recorded", ErrNotFound)
	ErrFallbackNeedsPlayer = fmt.Errorf("%w: fallback requires a wager on a named player", ErrValidation)
	ErrFallbackOdds        = fmt.Errorf("%w: fallback odds below minimum", ErrValidation)
	ErrMissingVerification = fmt.Errorf("%w: verification data required", ErrValidation)
)

// Scoring errors.
var (
	ErrAlreadyResolved = fmt.Errorf("%w: wager already resolved", ErrStateConflict)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrValidation)
)
