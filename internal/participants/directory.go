// Package participants maintains the normalized participant directory:
// identity-bearing records for the people who share subscriptions, with
// back-references to the subscriptions they appear on.
package participants

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/storage/snapshot"
)

// ErrNotFound indicates an operation on an unknown participant id.
var ErrNotFound = errors.New("participant not found")

// ErrEmptyName indicates a lookup or create with a blank name.
var ErrEmptyName = errors.New("participant name is empty")

// Normalize returns the canonical form of a participant name used for
// uniqueness: trimmed and lowercased. Two names that normalize equally
// are the same person.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Directory exposes the participant operations the outer layers call.
type Directory struct {
	table *snapshot.Table[models.Participant]
	now   func() time.Time
}

// NewDirectory creates a directory over the given table.
func NewDirectory(table *snapshot.Table[models.Participant]) *Directory {
	return &Directory{table: table, now: time.Now}
}

// Init loads the backing table. Must be called before any query.
func (d *Directory) Init() { d.table.Init() }

// List returns all participants in insertion order.
func (d *Directory) List() []models.Participant {
	return d.table.All()
}

// Get returns the participant with the given id.
func (d *Directory) Get(id string) (models.Participant, error) {
	p, ok := d.table.Get(id)
	if !ok {
		return models.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// FindOrCreate returns the participant whose name matches under
// normalization, creating a new record when none does. The stored name
// keeps the caller's casing, trimmed.
func (d *Directory) FindOrCreate(name string) (models.Participant, error) {
	key := Normalize(name)
	if key == "" {
		return models.Participant{}, ErrEmptyName
	}
	for _, p := range d.table.All() {
		if Normalize(p.Name) == key {
			return p, nil
		}
	}

	p := models.Participant{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(name),
		SubscriptionIDs: []string{},
		CreatedAt:       d.now(),
	}
	d.table.Insert(p)
	return p, nil
}

// SetAsMe marks the target participant as the app's own user and clears
// the flag on every other record, enforcing the at-most-one invariant
// here rather than trusting callers.
func (d *Directory) SetAsMe(id string) (models.Participant, error) {
	target, err := d.Get(id)
	if err != nil {
		return models.Participant{}, err
	}

	now := d.now()
	for _, p := range d.table.All() {
		if p.ID != id && p.IsMe {
			p.IsMe = false
			p.UpdatedAt = &now
			d.table.Update(p.ID, p)
		}
	}

	target.IsMe = true
	target.UpdatedAt = &now
	d.table.Update(id, target)
	return target, nil
}

// Patch carries a partial participant update; nil fields are unchanged.
// The IsMe flag is deliberately absent: it only moves through SetAsMe.
type Patch struct {
	Name *string
}

// Update merges the patch into the stored participant.
func (d *Directory) Update(id string, patch Patch) (models.Participant, error) {
	p, err := d.Get(id)
	if err != nil {
		return models.Participant{}, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	now := d.now()
	p.UpdatedAt = &now
	d.table.Update(id, p)
	return p, nil
}

// Delete removes the participant and reports whether one existed.
// Subscriptions' inline lists are not touched.
func (d *Directory) Delete(id string) bool {
	return d.table.Delete(id)
}

// AddSubscriptionLink records that the participant shares the given
// subscription. Linking an already-linked subscription or an unknown
// participant is a no-op.
func (d *Directory) AddSubscriptionLink(participantID, subscriptionID string) {
	p, ok := d.table.Get(participantID)
	if !ok {
		return
	}
	if slices.Contains(p.SubscriptionIDs, subscriptionID) {
		return
	}
	p.SubscriptionIDs = append(p.SubscriptionIDs, subscriptionID)
	now := d.now()
	p.UpdatedAt = &now
	d.table.Update(participantID, p)
}

// RemoveSubscriptionLink drops the back-reference. Removing an absent
// link is a no-op.
func (d *Directory) RemoveSubscriptionLink(participantID, subscriptionID string) {
	p, ok := d.table.Get(participantID)
	if !ok {
		return
	}
	i := slices.Index(p.SubscriptionIDs, subscriptionID)
	if i < 0 {
		return
	}
	p.SubscriptionIDs = slices.Delete(p.SubscriptionIDs, i, i+1)
	now := d.now()
	p.UpdatedAt = &now
	d.table.Update(participantID, p)
}
