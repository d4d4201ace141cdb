package models

import "time"

// Group represents a self-contained ledger: an ordered list of members and
// the expenses they share. Groups own their members and expenses outright.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g. "Roommates", "Ski Trip").
	Name string `json:"name"`

	// Description is an optional free-form note.
	Description string `json:"description,omitempty"`

	// Members is the ordered list of people in this group, including
	// soft-deleted ones.
	Members []Person `json:"members"`

	// Expenses is the ordered list of shared expenses.
	Expenses []Expense `json:"expenses"`

	// CreatedAt is when the group was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every mutation to members or expenses.
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberByID returns the member with the given ID, or nil if absent.
func (g *Group) MemberByID(personID string) *Person {
	for i := range g.Members {
		if g.Members[i].ID == personID {
			return &g.Members[i]
		}
	}
	return nil
}

// ExpenseByID returns the expense with the given ID, or nil if absent.
func (g *Group) ExpenseByID(expenseID string) *Expense {
	for i := range g.Expenses {
		if g.Expenses[i].ID == expenseID {
			return &g.Expenses[i]
		}
	}
	return nil
}

// HasExpensesPaidBy reports whether any expense names the person as payer.
// Members with payment history must stay attributable and can only be
// soft-deleted.
func (g *Group) HasExpensesPaidBy(personID string) bool {
	for i := range g.Expenses {
		if g.Expenses[i].PayerID == personID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = append([]Person(nil), g.Members...)
	c.Expenses = make([]Expense, len(g.Expenses))
	for i := range g.Expenses {
		c.Expenses[i] = *g.Expenses[i].Clone()
	}
	return &c
}
