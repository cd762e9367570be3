// Package subscriptions implements the repository for subscription
// records: creation, edits, due-date advancement and search over a
// snapshot-backed table.
package subscriptions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/recurrence"
	"github.com/subscry/subscry/internal/storage/snapshot"
)

// ErrNotFound indicates an operation on an unknown subscription id.
var ErrNotFound = errors.New("subscription not found")

// Repository exposes the subscription operations the outer layers call.
type Repository struct {
	table *snapshot.Table[models.Subscription]
	now   func() time.Time
}

// NewRepository creates a repository over the given table.
func NewRepository(table *snapshot.Table[models.Subscription]) *Repository {
	return &Repository{table: table, now: time.Now}
}

// Init loads the backing table. Must be called before any query.
func (r *Repository) Init() { r.table.Init() }

// CreateInput carries the caller-provided fields for a new subscription.
type CreateInput struct {
	Title              string
	Amount             int64
	Participants       []models.InlineParticipant
	Frequency          models.Frequency
	CustomIntervalDays *int
	StartDate          time.Time
	EndDate            *time.Time
	AutoRenew          bool
	Tags               string
	Notes              *string
}

// Create stores a new subscription, assigning its id and timestamps and
// computing the initial due date: the start date itself when it is still
// in the future, otherwise the first period end after now.
func (r *Repository) Create(input CreateInput) (models.Subscription, error) {
	now := r.now()
	sub := models.Subscription{
		ID:                 uuid.New().String(),
		Title:              input.Title,
		Amount:             input.Amount,
		Participants:       input.Participants,
		Frequency:          input.Frequency,
		CustomIntervalDays: input.CustomIntervalDays,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		AutoRenew:          input.AutoRenew,
		Tags:               input.Tags,
		Notes:              input.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	next, err := recurrence.NextDue(sub, now)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.NextDue = next

	r.table.Insert(sub)
	return sub, nil
}

// Get returns the subscription with the given id.
func (r *Repository) Get(id string) (models.Subscription, error) {
	sub, ok := r.table.Get(id)
	if !ok {
		return models.Subscription{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sub, nil
}

// List returns all subscriptions ordered by next due date, earliest
// first. Ties keep insertion order.
func (r *Repository) List() []models.Subscription {
	return r.table.AllOrderedBy(func(s models.Subscription) time.Time { return s.NextDue })
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title              *string
	Amount             *int64
	Participants       []models.InlineParticipant
	Frequency          *models.Frequency
	CustomIntervalDays *int
	StartDate          *time.Time
	EndDate            *time.Time
	AutoRenew          *bool
	Tags               *string
	Notes              *string
}

// touchesRule reports whether the patch changes a field the due date is
// derived from.
func (p Patch) touchesRule() bool {
	return p.Frequency != nil || p.StartDate != nil || p.CustomIntervalDays != nil
}

// Update merges the patch into the stored subscription. The due date is
// recomputed only when a rule field (frequency, start date or custom
// interval) changes; editing the title alone must not disturb it.
func (r *Repository) Update(id string, patch Patch) (models.Subscription, error) {
	sub, err := r.Get(id)
	if err != nil {
		return models.Subscription{}, err
	}

	if patch.Title != nil {
		sub.Title = *patch.Title
	}
	if patch.Amount != nil {
		sub.Amount = *patch.Amount
	}
	if patch.Participants != nil {
		sub.Participants = patch.Participants
	}
	if patch.Frequency != nil {
		sub.Frequency = *patch.Frequency
	}
	if patch.CustomIntervalDays != nil {
		sub.CustomIntervalDays = patch.CustomIntervalDays
	}
	if patch.StartDate != nil {
		sub.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		sub.EndDate = patch.EndDate
	}
	if patch.AutoRenew != nil {
		sub.AutoRenew = *patch.AutoRenew
	}
	if patch.Tags != nil {
		sub.Tags = *patch.Tags
	}
	if patch.Notes != nil {
		sub.Notes = patch.Notes
	}
	sub.UpdatedAt = r.now()

	if patch.touchesRule() {
		next, err := recurrence.NextDue(sub, r.now())
		if err != nil {
			return models.Subscription{}, err
		}
		sub.NextDue = next
	}

	r.table.Update(id, sub)
	return sub, nil
}

// MarkAsPaid advances the due date by one period from where it currently
// stands. The stored next_due is the reference, not the current time, so
// paying early never skips a period.
func (r *Repository) MarkAsPaid(id string) (models.Subscription, error) {
	sub, err := r.Get(id)
	if err != nil {
		return models.Subscription{}, err
	}

	next, err := recurrence.NextDue(sub, sub.NextDue)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.NextDue = next
	sub.UpdatedAt = r.now()

	r.table.Update(id, sub)
	return sub, nil
}

// Delete removes the subscription and reports whether one existed. The
// participant directory is not touched; its back-references go dangling
// until the next reconciliation read.
func (r *Repository) Delete(id string) bool {
	return r.table.Delete(id)
}

// Filter selects subscriptions in Search. A nil Active means no
// activity filter; empty Tags means no tag filter.
type Filter struct {
	Active *bool
	Tags   []string
}

// Search returns subscriptions matching the filter, in due-date order.
//
// A subscription with an end date is active until that date, inclusive.
// Without one it is active only while auto-renew is on. The tag filter
// matches when any filter tag appears in the subscription's
// comma-separated tag list.
func (r *Repository) Search(filter Filter) []models.Subscription {
	today := r.now()
	var out []models.Subscription
	for _, sub := range r.List() {
		if filter.Active != nil && *filter.Active != isActive(sub, today) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(sub, filter.Tags) {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func isActive(sub models.Subscription, today time.Time) bool {
	if sub.EndDate != nil {
		return !sub.EndDate.Before(today)
	}
	return sub.AutoRenew
}

func hasAnyTag(sub models.Subscription, tags []string) bool {
	if sub.Tags == "" {
		return false
	}
	subTags := make(map[string]bool)
	for _, t := range strings.Split(sub.Tags, ",") {
		subTags[strings.TrimSpace(t)] = true
	}
	for _, t := range tags {
		if subTags[strings.TrimSpace(t)] {
			return true
		}
	}
	return false
}
