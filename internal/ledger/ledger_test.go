package ledger

import (
	"testing"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/participants"
	"github.com/subscry/subscry/internal/storage/snapshot"
)

func inline(names ...string) []models.InlineParticipant {
	out := make([]models.InlineParticipant, len(names))
	for i, n := range names {
		out[i] = models.InlineParticipant{Name: n}
	}
	return out
}

func sub(id string, amount int64, parts []models.InlineParticipant) models.Subscription {
	return models.Subscription{ID: id, Title: id, Amount: amount, Participants: parts}
}

func totalsByName(totals []PersonTotal) map[string]int64 {
	m := make(map[string]int64, len(totals))
	for _, pt := range totals {
		m[pt.Name] = pt.TotalCents
	}
	return m
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name string
		subs []models.Subscription
		want map[string]int64
	}{
		{
			name: "even split between one participant and the owner",
			subs: []models.Subscription{sub("netflix", 1000, inline("Alice"))},
			want: map[string]int64{"Alice": 500, SelfName: 500},
		},
		{
			name: "remainder goes to lexicographically first names",
			subs: []models.Subscription{sub("rent", 100, inline("Bob", "Alice"))},
			// 100 / 3 = 33 rem 1; sorted [Alice Bob You] gives Alice the
			// extra cent.
			want: map[string]int64{"Alice": 34, "Bob": 33, SelfName: 33},
		},
		{
			name: "no participants means the owner pays everything",
			subs: []models.Subscription{sub("vpn", 499, nil)},
			want: map[string]int64{SelfName: 499},
		},
		{
			name: "totals accumulate across subscriptions",
			subs: []models.Subscription{
				sub("netflix", 1000, inline("Alice")),
				sub("spotify", 900, inline("Alice", "Bob")),
			},
			want: map[string]int64{"Alice": 800, "Bob": 300, SelfName: 800},
		},
		{
			name: "blank inline names fall back to a placeholder",
			subs: []models.Subscription{sub("gym", 900, inline("", "Alice"))},
			want: map[string]int64{"Alice": 300, unknownName: 300, SelfName: 300},
		},
		{
			name: "isMe participant still splits next to the implicit owner",
			subs: []models.Subscription{{
				ID: "dup", Title: "dup", Amount: 1000,
				Participants: []models.InlineParticipant{{Name: "Me", IsMe: true}},
			}},
			// The owner token is appended regardless of the flag, so the
			// user's own share appears twice.
			want: map[string]int64{"Me": 500, SelfName: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := totalsByName(ComputeTotals(tt.subs))
			if len(got) != len(tt.want) {
				t.Fatalf("totals = %v, want %v", got, tt.want)
			}
			for name, cents := range tt.want {
				if got[name] != cents {
					t.Errorf("%s = %d, want %d", name, got[name], cents)
				}
			}
		})
	}
}

// Shares for a single subscription must sum exactly to its amount for
// any recipient count.
func TestSharesSumExactly(t *testing.T) {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank"}
	amounts := []int64{1, 2, 99, 100, 101, 997, 10000}

	for n := 0; n <= len(names); n++ {
		for _, amount := range amounts {
			s := sub("s", amount, inline(names[:n]...))
			var total int64
			for _, pt := range ComputeTotals([]models.Subscription{s}) {
				total += pt.TotalCents
			}
			if total != amount {
				t.Errorf("%d recipients, amount %d: shares sum to %d", n+1, amount, total)
			}
		}
	}
}

func newTestDirectory(t *testing.T) *participants.Directory {
	t.Helper()
	table, err := snapshot.New[models.Participant](t.TempDir(), "participants_db")
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	t.Cleanup(table.Close)
	dir := participants.NewDirectory(table)
	dir.Init()
	return dir
}

func TestComputeTotalsReconciled(t *testing.T) {
	subs := []models.Subscription{
		sub("netflix", 1000, inline("Alice")),
		sub("spotify", 900, inline("Alice", "Bob")),
	}

	t.Run("empty directory falls back to inline totals", func(t *testing.T) {
		got := totalsByName(ComputeTotalsReconciled(subs, nil))
		if got["Alice"] != 800 || got["Bob"] != 300 || got[SelfName] != 800 {
			t.Errorf("fallback totals = %v", got)
		}
	})

	t.Run("directory rows are preferred, zero when absent", func(t *testing.T) {
		directory := []models.Participant{
			{ID: "1", Name: "alice"}, // casing differs from the inline list
			{ID: "2", Name: "Zoe"},   // appears on no subscription
		}
		totals := ComputeTotalsReconciled(subs, directory)
		got := totalsByName(totals)

		if got["Alice"] != 800 {
			t.Errorf("Alice = %d, want 800", got["Alice"])
		}
		if cents, ok := got["Zoe"]; !ok || cents != 0 {
			t.Errorf("Zoe = %d (present %v), want zero row", cents, ok)
		}
		// The owner aggregate is surfaced even without a directory record.
		if got[SelfName] != 800 {
			t.Errorf("%s = %d, want 800", SelfName, got[SelfName])
		}
		// Bob is not in the directory, so no Bob row.
		if _, ok := got["Bob"]; ok {
			t.Error("Bob should not appear when missing from the directory")
		}
	})
}

func TestMigrateInlineToDirectory(t *testing.T) {
	dir := newTestDirectory(t)
	subs := []models.Subscription{
		sub("netflix", 1000, inline("Alice")),
		sub("spotify", 900, inline("alice ", "Bob", "")),
	}

	linked := MigrateInlineToDirectory(subs, dir)
	if linked != 3 {
		t.Errorf("linked = %d, want 3", linked)
	}

	records := dir.List()
	if len(records) != 2 {
		t.Fatalf("directory has %d records, want 2 (Alice, Bob)", len(records))
	}

	// Running the migration again must change nothing.
	MigrateInlineToDirectory(subs, dir)

	records = dir.List()
	if len(records) != 2 {
		t.Fatalf("after second run directory has %d records, want 2", len(records))
	}
	for _, p := range records {
		want := 1
		if participants.Normalize(p.Name) == "alice" {
			want = 2
		}
		if len(p.SubscriptionIDs) != want {
			t.Errorf("%s links = %v, want %d", p.Name, p.SubscriptionIDs, want)
		}
	}
}
