package models

import "time"

// Participant is a normalized directory record for one person who shares
// subscriptions with the app's user.
//
// Names are unique after trimming and lowercasing; the directory is
// responsible for never creating two records whose names collide under
// that normalization.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string `json:"id"`

	// Name is the display name as first entered, trimmed.
	Name string `json:"name"`

	// IsMe marks the record representing the app's own user. At most one
	// record in the directory carries it; setting it on one record clears
	// it on all others.
	IsMe bool `json:"isMe"`

	// SubscriptionIDs are back-references to the subscriptions this
	// person shares. Semantically a set: never contains duplicates. A
	// referenced subscription may have been deleted; readers tolerate
	// dangling ids.
	SubscriptionIDs []string `json:"subscriptionIds"`

	// CreatedAt is set once on creation; UpdatedAt is nil until the
	// record is first modified.
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// RowID returns the participant's identifier for the snapshot store.
func (p Participant) RowID() string { return p.ID }
