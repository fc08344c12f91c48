package handler

import (
	"sync"
	"time"

	"matchday-bot/internal/model"
)

// pendingTTL bounds how long a type choice waits for its /dati message.
const pendingTTL = 15 * time.Minute

// Pending is a half-finished verification step for one participant.
type Pending struct {
	Type         model.VerificationType
	Fallback     bool
	FallbackText string
	expiresAt    time.Time
}

// PendingStore keeps each participant's pending step between messages.
type PendingStore struct {
	items sync.Map // map[string]Pending
	now   func() time.Time
}

// NewPendingStore creates an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{now: time.Now}
}

// Put replaces the participant's pending step.
func (s *PendingStore) Put(handle string, p Pending) {
	p.expiresAt = s.now().Add(pendingTTL)
	s.items.Store(handle, p)
}

// Get returns the participant's pending step if it has not expired.
func (s *PendingStore) Get(handle string) (Pending, bool) {
	v, ok := s.items.Load(handle)
	if !ok {
		return Pending{}, false
	}
	p := v.(Pending)
	if s.now().After(p.expiresAt) {
		s.items.Delete(handle)
		return Pending{}, false
	}
	return p, true
}

// Clear drops the participant's pending step.
func (s *PendingStore) Clear(handle string) {
	s.items.Delete(handle)
}
