package server

import (
	"errors"
	"testing"
)

// TestPresenceJoinAndList verifies that the registry lists identities in join
// order after any sequence of joins.
func TestPresenceJoinAndList(t *testing.T) {
	p := newPresenceRegistry()

	for _, join := range []struct{ id, name string }{
		{"conn-1", "alice"},
		{"conn-2", "bob"},
		{"conn-3", "carol"},
	} {
		if _, err := p.join(join.id, join.name); err != nil {
			t.Fatalf("join(%s) failed: %v", join.id, err)
		}
	}

	users := p.list()
	if len(users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(users))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if users[i].Username != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, users[i].Username)
		}
	}
}

// TestPresenceDuplicateConnection verifies that a connection cannot register
// a second identity.
func TestPresenceDuplicateConnection(t *testing.T) {
	p := newPresenceRegistry()

	if _, err := p.join("conn-1", "alice"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if _, err := p.join("conn-1", "mallory"); !errors.Is(err, errDuplicateConnection) {
		t.Errorf("Expected errDuplicateConnection, got %v", err)
	}

	if user, _ := p.lookup("conn-1"); user.Username != "alice" {
		t.Errorf("Duplicate join overwrote identity: got %s", user.Username)
	}
}

// TestPresenceLeave verifies that leave removes exactly the departed identity
// and is idempotent.
func TestPresenceLeave(t *testing.T) {
	p := newPresenceRegistry()
	_, _ = p.join("conn-1", "alice")
	_, _ = p.join("conn-2", "bob")

	user, removed := p.leave("conn-1")
	if !removed || user.Username != "alice" {
		t.Fatalf("Expected to remove alice, got %q (removed=%v)", user.Username, removed)
	}

	if _, removed := p.leave("conn-1"); removed {
		t.Error("Second leave reported a removal")
	}

	users := p.list()
	if len(users) != 1 || users[0].Username != "bob" {
		t.Errorf("Expected only bob online, got %v", users)
	}
}

// TestPresenceConsistencyAfterChurn verifies that after an arbitrary
// join/leave sequence the list equals exactly the connections still joined.
func TestPresenceConsistencyAfterChurn(t *testing.T) {
	p := newPresenceRegistry()

	_, _ = p.join("conn-1", "alice")
	_, _ = p.join("conn-2", "bob")
	p.leave("conn-1")
	_, _ = p.join("conn-3", "carol")
	p.leave("conn-3")
	_, _ = p.join("conn-1", "alice")

	users := p.list()
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].Username != "bob" || users[1].Username != "alice" {
		t.Errorf("Expected [bob alice] in rejoin order, got %v", users)
	}
}
