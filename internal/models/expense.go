package models

import "time"

// Expense represents a shared cost paid by one member and split equally
// among its participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Title is the human-readable name for the expense (e.g. "Dinner").
	Title string `json:"title"`

	// Amount is the full cost in currency-agnostic units. Always positive.
	Amount float64 `json:"amount"`

	// PayerID references the member who paid. A payer can never be removed
	// from the group while this expense exists.
	PayerID string `json:"payer_id"`

	// Participants is the non-empty list of member IDs that share the cost
	// equally.
	Participants []string `json:"participants"`

	// Description is an optional free-form note.
	Description string `json:"description,omitempty"`

	// Category is an optional label (e.g. "food", "transport").
	Category string `json:"category,omitempty"`

	// CreatedAt is when the expense was recorded. Immutable after creation.
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the expense.
func (e *Expense) Clone() *Expense {
	c := *e
	c.Participants = append([]string(nil), e.Participants...)
	return &c
}
