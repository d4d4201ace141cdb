package models

import "time"

// PersonStatus is the lifecycle state of a group member.
type PersonStatus string

const (
	// PersonActive is the default state; active people participate in
	// settlement computation.
	PersonActive PersonStatus = "active"

	// PersonDeleted marks a soft-deleted member. The record stays in the
	// group so historical expenses referencing it remain resolvable.
	PersonDeleted PersonStatus = "deleted"
)

// Person represents one member of a group.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name. Non-empty and unique among active members
	// of a group.
	Name string `json:"name"`

	// Avatar is an optional opaque reference to a profile image.
	Avatar string `json:"avatar,omitempty"`

	// Status tracks soft deletion. Empty is treated as active for records
	// persisted before the field existed.
	Status PersonStatus `json:"status"`

	// CreatedAt is when the person was added to the group.
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the person participates in settlement.
// This is the single active-person predicate shared by the ledger and the
// settlement engine.
func (p *Person) IsActive() bool {
	return p.Status != PersonDeleted
}
