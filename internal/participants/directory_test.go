package participants

import (
	"errors"
	"testing"
	"time"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/storage/snapshot"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	table, err := snapshot.New[models.Participant](t.TempDir(), "participants_db")
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	t.Cleanup(table.Close)

	dir := NewDirectory(table)
	dir.Init()
	dir.now = func() time.Time {
		return time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	}
	return dir
}

func TestFindOrCreate(t *testing.T) {
	dir := newTestDirectory(t)

	alice, err := dir.FindOrCreate("Alice")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if alice.ID == "" {
		t.Error("expected id to be generated")
	}

	t.Run("lookup ignores case and whitespace", func(t *testing.T) {
		for _, name := range []string{"alice", "  ALICE  ", "Alice"} {
			got, err := dir.FindOrCreate(name)
			if err != nil {
				t.Fatalf("FindOrCreate(%q) failed: %v", name, err)
			}
			if got.ID != alice.ID {
				t.Errorf("FindOrCreate(%q) created a duplicate record", name)
			}
		}
		if got := len(dir.List()); got != 1 {
			t.Errorf("directory has %d records, want 1", got)
		}
	})

	t.Run("stored name is trimmed, casing kept", func(t *testing.T) {
		bob, err := dir.FindOrCreate("  Bob Marley  ")
		if err != nil {
			t.Fatalf("FindOrCreate failed: %v", err)
		}
		if bob.Name != "Bob Marley" {
			t.Errorf("name = %q, want %q", bob.Name, "Bob Marley")
		}
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		if _, err := dir.FindOrCreate("   "); !errors.Is(err, ErrEmptyName) {
			t.Errorf("error = %v, want ErrEmptyName", err)
		}
	})
}

func TestSetAsMe(t *testing.T) {
	dir := newTestDirectory(t)

	alice, _ := dir.FindOrCreate("Alice")
	bob, _ := dir.FindOrCreate("Bob")
	if _, err := dir.FindOrCreate("Carol"); err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	if _, err := dir.SetAsMe(alice.ID); err != nil {
		t.Fatalf("SetAsMe failed: %v", err)
	}
	if _, err := dir.SetAsMe(bob.ID); err != nil {
		t.Fatalf("SetAsMe failed: %v", err)
	}

	// Exactly one record may carry the flag.
	var flagged []string
	for _, p := range dir.List() {
		if p.IsMe {
			flagged = append(flagged, p.Name)
		}
	}
	if len(flagged) != 1 || flagged[0] != "Bob" {
		t.Errorf("flagged = %v, want [Bob]", flagged)
	}

	if _, err := dir.SetAsMe("nonexistent-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionLinks(t *testing.T) {
	dir := newTestDirectory(t)

	alice, _ := dir.FindOrCreate("Alice")

	dir.AddSubscriptionLink(alice.ID, "sub-1")
	dir.AddSubscriptionLink(alice.ID, "sub-2")
	dir.AddSubscriptionLink(alice.ID, "sub-1") // duplicate add is a no-op

	got, err := dir.Get(alice.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.SubscriptionIDs) != 2 {
		t.Fatalf("links = %v, want [sub-1 sub-2]", got.SubscriptionIDs)
	}

	dir.RemoveSubscriptionLink(alice.ID, "sub-1")
	dir.RemoveSubscriptionLink(alice.ID, "sub-1") // absent remove is a no-op
	dir.RemoveSubscriptionLink("nonexistent-id", "sub-2")

	got, _ = dir.Get(alice.ID)
	if len(got.SubscriptionIDs) != 1 || got.SubscriptionIDs[0] != "sub-2" {
		t.Errorf("links = %v, want [sub-2]", got.SubscriptionIDs)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	dir := newTestDirectory(t)

	alice, _ := dir.FindOrCreate("Alice")
	if alice.UpdatedAt != nil {
		t.Error("expected UpdatedAt to be nil on a fresh record")
	}

	name := "Alicia"
	updated, err := dir.Update(alice.ID, Patch{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Alicia" {
		t.Errorf("name = %q, want Alicia", updated.Name)
	}
	if updated.UpdatedAt == nil {
		t.Error("expected UpdatedAt to be set after update")
	}

	if _, err := dir.Update("nonexistent-id", Patch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	if !dir.Delete(alice.ID) {
		t.Error("Delete = false, want true")
	}
	if dir.Delete(alice.ID) {
		t.Error("second Delete = true, want false")
	}
}
