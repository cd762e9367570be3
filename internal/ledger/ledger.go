// Package ledger computes deterministic, cent-exact per-person cost
// totals across subscriptions.
//
// Each subscription's amount is split among its recipients: the inline
// participants plus an implicit recipient for the app's own user, who is
// always appended even when an inline participant already carries the
// isMe flag. The split is exact: shares always sum to the subscription's
// amount, with the remainder distributed one cent at a time in
// lexicographic name order.
package ledger

import (
	"sort"
	"strings"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/participants"
)

// SelfName is the display name of the implicit owner recipient.
const SelfName = "You"

// unknownName stands in for inline participants with a blank name.
const unknownName = "Unknown"

// Share is the slice of one subscription's cost assigned to one person.
type Share struct {
	SubscriptionID string `json:"subscription_id"`
	Title          string `json:"title"`
	ShareCents     int64  `json:"share_cents"`
}

// PersonTotal aggregates one person's shares across all subscriptions.
type PersonTotal struct {
	Name       string  `json:"name"`
	TotalCents int64   `json:"total_cents"`
	Shares     []Share `json:"subscriptions"`
}

// ComputeTotals splits every subscription's amount among its recipients
// and aggregates per person, keyed by normalized name. The result is
// sorted by normalized name for deterministic output.
func ComputeTotals(subs []models.Subscription) []PersonTotal {
	agg := aggregate(subs)

	keys := make([]string, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make([]PersonTotal, 0, len(keys))
	for _, k := range keys {
		totals = append(totals, *agg[k])
	}
	return totals
}

// ComputeTotalsReconciled prefers the directory as the row set: one
// total per directory participant, zero when the person appears on no
// subscription. The owner's aggregate is appended when no directory
// record represents them. An empty directory falls back to the inline
// computation entirely (the pre-migration bootstrap case).
func ComputeTotalsReconciled(subs []models.Subscription, directory []models.Participant) []PersonTotal {
	if len(directory) == 0 {
		return ComputeTotals(subs)
	}

	agg := aggregate(subs)
	selfKey := participants.Normalize(SelfName)

	result := make([]PersonTotal, 0, len(directory)+1)
	seenSelf := false
	for _, p := range directory {
		key := participants.Normalize(p.Name)
		if key == selfKey {
			seenSelf = true
		}
		if entry, ok := agg[key]; ok {
			result = append(result, *entry)
		} else {
			result = append(result, PersonTotal{Name: p.Name, Shares: []Share{}})
		}
	}
	if !seenSelf {
		if entry, ok := agg[selfKey]; ok {
			result = append(result, *entry)
		}
	}
	return result
}

// MigrateInlineToDirectory folds every subscription's inline participant
// list into the directory, linking each subscription to the matching
// record. Blank names are skipped. Running it again is harmless: lookups
// are find-or-create and links are set-membership, so no duplicates can
// appear. It returns the number of links ensured.
func MigrateInlineToDirectory(subs []models.Subscription, dir *participants.Directory) int {
	linked := 0
	for _, sub := range subs {
		for _, inline := range sub.Participants {
			if strings.TrimSpace(inline.Name) == "" {
				continue
			}
			rec, err := dir.FindOrCreate(inline.Name)
			if err != nil {
				continue
			}
			dir.AddSubscriptionLink(rec.ID, sub.ID)
			linked++
		}
	}
	return linked
}

func aggregate(subs []models.Subscription) map[string]*PersonTotal {
	agg := make(map[string]*PersonTotal)

	for _, sub := range subs {
		recipients := recipientNames(sub)
		count := int64(len(recipients))
		base := sub.Amount / count
		remainder := sub.Amount - base*count

		// Extra cents go to the lexicographically first names so the
		// distribution is stable across runs.
		sort.Strings(recipients)

		for _, name := range recipients {
			share := base
			if remainder > 0 {
				share++
				remainder--
			}

			key := participants.Normalize(name)
			entry, ok := agg[key]
			if !ok {
				entry = &PersonTotal{Name: name}
				agg[key] = entry
			}
			entry.TotalCents += share
			entry.Shares = append(entry.Shares, Share{
				SubscriptionID: sub.ID,
				Title:          sub.Title,
				ShareCents:     share,
			})
		}
	}
	return agg
}

// recipientNames lists who a subscription's cost is split among: every
// inline participant plus the owner, or the owner alone when the inline
// list is empty. An inline participant flagged isMe still counts as a
// separate recipient next to the appended owner.
func recipientNames(sub models.Subscription) []string {
	if len(sub.Participants) == 0 {
		return []string{SelfName}
	}
	names := make([]string, 0, len(sub.Participants)+1)
	for _, p := range sub.Participants {
		name := p.Name
		if strings.TrimSpace(name) == "" {
			name = unknownName
		}
		names = append(names, name)
	}
	return append(names, SelfName)
}
