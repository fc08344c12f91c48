package model

import "time"

// Journal entry kinds.
const (
	EntryLossCharge   = "loss_charge"
	EntryJollyPenalty = "jolly_penalty"
	EntryPayment      = "payment"
	EntryGroupWager   = "group_wager"
)

// JournalEntry records one money movement. Charges are positive amounts
// added to a participant's debt; payments are positive amounts paid back.
type JournalEntry struct {
	ID          int64     `json:"id"`
	Handle      string    `json:"handle"`
	Round       int       `json:"round"`
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
