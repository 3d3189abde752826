package server

import "testing"

// TestRoomLazyCreation verifies that a room springs into existence on first
// join with empty membership and history.
func TestRoomLazyCreation(t *testing.T) {
	d := newRoomDirectory(10)

	if _, exists := d.get("random"); exists {
		t.Fatal("Room existed before first join")
	}

	rm := d.join("random", "conn-1")
	if !rm.hasMember("conn-1") {
		t.Error("Joiner missing from membership")
	}
	if rm.log.len() != 0 {
		t.Errorf("New room has %d messages, expected 0", rm.log.len())
	}

	again := d.join("random", "conn-2")
	if again != rm {
		t.Error("Second join created a new room instead of reusing it")
	}
}

// TestDefaultRoomExists verifies the general room is present from the start.
func TestDefaultRoomExists(t *testing.T) {
	d := newRoomDirectory(10)
	if _, exists := d.get("general"); !exists {
		t.Error("Expected the general room to exist by default")
	}
}

// TestRoomRetainedWhenEmpty verifies the deliberate retention policy: a room
// keeps its history after every member leaves, so late joiners can replay it.
func TestRoomRetainedWhenEmpty(t *testing.T) {
	d := newRoomDirectory(10)

	rm := d.join("random", "conn-1")
	rm.log.append(Message{ID: 1, Text: "hello", Room: "random"})
	d.removeConnection("conn-1")

	rm, exists := d.get("random")
	if !exists {
		t.Fatal("Room was deleted when its last member left")
	}
	if len(rm.members) != 0 {
		t.Errorf("Expected empty membership, got %d members", len(rm.members))
	}
	if rm.log.len() != 1 {
		t.Errorf("Room history lost: %d messages", rm.log.len())
	}
}

// TestRemoveConnectionScrubsEveryRoom verifies that disconnect cleanup
// removes the connection from all rooms it joined.
func TestRemoveConnectionScrubsEveryRoom(t *testing.T) {
	d := newRoomDirectory(10)
	d.join("alpha", "conn-1")
	d.join("beta", "conn-1")
	d.join("beta", "conn-2")

	d.removeConnection("conn-1")

	for _, name := range []string{"alpha", "beta"} {
		rm, _ := d.get(name)
		if rm.hasMember("conn-1") {
			t.Errorf("conn-1 still a member of %s", name)
		}
	}
	if rm, _ := d.get("beta"); !rm.hasMember("conn-2") {
		t.Error("conn-2 was scrubbed from beta by mistake")
	}
}

// TestRoomLogsAreIndependent verifies that each room's bounded log evicts on
// its own capacity without affecting other rooms.
func TestRoomLogsAreIndependent(t *testing.T) {
	d := newRoomDirectory(2)
	alpha := d.join("alpha", "conn-1")
	beta := d.join("beta", "conn-1")

	for i := 1; i <= 3; i++ {
		alpha.log.append(Message{ID: int64(i)})
	}
	beta.log.append(Message{ID: 100})

	if alpha.log.len() != 2 {
		t.Errorf("alpha retained %d messages, expected 2", alpha.log.len())
	}
	if got := alpha.log.snapshot()[0].ID; got != 2 {
		t.Errorf("alpha evicted wrong message, oldest is now %d", got)
	}
	if beta.log.len() != 1 {
		t.Errorf("beta retained %d messages, expected 1", beta.log.len())
	}
}
