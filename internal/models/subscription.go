package models

import "time"

// Frequency identifies a recurrence rule.
type Frequency string

// Supported recurrence rules. Custom uses CustomIntervalDays as the
// period length in days.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// Valid reports whether f is one of the supported recurrence rules.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// InlineParticipant is the denormalized participant entry embedded in a
// subscription record: a display name plus a flag marking the app's own
// user. At most one entry should carry IsMe, but this is not enforced
// here.
type InlineParticipant struct {
	Name string `json:"name"`
	IsMe bool   `json:"isMe"`
}

// Subscription represents one recurring financial obligation.
type Subscription struct {
	// ID is the unique identifier for the subscription (UUID format).
	ID string `json:"id"`

	// Title is the human-readable name (e.g., "Netflix", "Gym").
	Title string `json:"title"`

	// Amount is the cost per period in integer minor currency units
	// (cents). Never a float.
	Amount int64 `json:"amount"`

	// Participants is the inline, ordered list of people sharing this
	// subscription. It is a denormalized snapshot; the participant
	// directory holds the authoritative records.
	Participants []InlineParticipant `json:"participants"`

	// Frequency is the recurrence rule.
	Frequency Frequency `json:"frequency"`

	// CustomIntervalDays is the period length in days when Frequency is
	// FrequencyCustom, nil otherwise.
	CustomIntervalDays *int `json:"custom_interval_days"`

	// StartDate is the first instant the subscription can be due.
	StartDate time.Time `json:"start_date"`

	// EndDate, when set, caps the recurrence: the due date never
	// advances past it.
	EndDate *time.Time `json:"end_date"`

	// NextDue is the cached next due instant. It is recomputed on
	// creation, on any rule-affecting edit, and when the subscription is
	// marked as paid; it must never be read stale after one of those.
	NextDue time.Time `json:"next_due"`

	// AutoRenew marks open-ended subscriptions as active.
	AutoRenew bool `json:"auto_renew"`

	// Tags is a comma-separated tag list.
	Tags string `json:"tags"`

	// Notes is free text, nil when unset.
	Notes *string `json:"notes"`

	// CreatedAt and UpdatedAt are maintained by the repository.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RowID returns the subscription's identifier for the snapshot store.
func (s Subscription) RowID() string { return s.ID }
