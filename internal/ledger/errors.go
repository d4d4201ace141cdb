package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy for ledger operations. Handlers match on the four category
// errors with errors.Is; the wrapped variants carry the human-readable
// reason.
var (
	// ErrValidation is returned for malformed input: empty names,
	// non-positive amounts, empty participant sets.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation targets an ID that is not
	// present in the store.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a domain invariant blocks the operation,
	// e.g. removing a member with payment history.
	ErrConflict = errors.New("conflict")

	// ErrInvariant is returned when the operation would violate a structural
	// guarantee, e.g. deleting the last group.
	ErrInvariant = errors.New("invariant violation")
)

var (
	ErrEmptyGroupName   = fmt.Errorf("%w: group name cannot be empty", ErrValidation)
	ErrEmptyPersonName  = fmt.Errorf("%w: person name cannot be empty", ErrValidation)
	ErrDuplicateName    = fmt.Errorf("%w: a member with this name already exists", ErrValidation)
	ErrEmptyTitle       = fmt.Errorf("%w: expense title cannot be empty", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrUnknownPayer     = fmt.Errorf("%w: payer is not an active member", ErrValidation)
	ErrNoParticipants   = fmt.Errorf("%w: expense needs at least one participant", ErrValidation)
	ErrDupParticipant   = fmt.Errorf("%w: participants must be unique", ErrValidation)
	ErrGroupNotFound    = fmt.Errorf("%w: group", ErrNotFound)
	ErrPersonNotFound   = fmt.Errorf("%w: person", ErrNotFound)
	ErrExpenseNotFound  = fmt.Errorf("%w: expense", ErrNotFound)
	ErrNoActiveGroup    = fmt.Errorf("%w: no active group", ErrNotFound)
	ErrPayerHasExpenses = fmt.Errorf("%w: member has payment history", ErrConflict)
	ErrLastGroup        = fmt.Errorf("%w: at least one group must remain", ErrInvariant)
)

// ErrNoExpenses is returned by Settlement when the active group has no
// expenses. Not a failure: callers interpret it as "no settlement needed".
var ErrNoExpenses = errors.New("group has no expenses")
