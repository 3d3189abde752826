// Package server manages named rooms: lazy creation on first join, membership
// sets keyed by connection id, and per-room bounded history.
package server

// room holds one room's membership and message history. Membership changes on
// join and on disconnect; the log follows the same retention policy as the
// global one.
type room struct {
	members map[string]struct{}
	log     *messageLog
}

// roomDirectory maps room names to rooms. Rooms are created on first join and
// never deleted, even when every member has left: late joiners still replay an
// empty room's retained history. Unbounded room-name growth is an accepted
// cost of that policy.
type roomDirectory struct {
	rooms    map[string]*room
	capacity int
}

func newRoomDirectory(capacity int) *roomDirectory {
	d := &roomDirectory{rooms: make(map[string]*room), capacity: capacity}
	// The default room always exists, matching the client's initial view.
	d.rooms["general"] = &room{
		members: make(map[string]struct{}),
		log:     newMessageLog(capacity),
	}
	return d
}

// join adds the connection to the named room, creating the room if needed,
// and returns it.
func (d *roomDirectory) join(name, connID string) *room {
	rm, exists := d.rooms[name]
	if !exists {
		rm = &room{
			members: make(map[string]struct{}),
			log:     newMessageLog(d.capacity),
		}
		d.rooms[name] = rm
	}
	rm.members[connID] = struct{}{}
	return rm
}

func (d *roomDirectory) get(name string) (*room, bool) {
	rm, exists := d.rooms[name]
	return rm, exists
}

// removeConnection scrubs the connection from every room's membership. Called
// on disconnect; the rooms themselves are retained.
func (d *roomDirectory) removeConnection(connID string) {
	for _, rm := range d.rooms {
		delete(rm.members, connID)
	}
}

func (rm *room) hasMember(connID string) bool {
	_, ok := rm.members[connID]
	return ok
}

func (rm *room) memberIDs() []string {
	out := make([]string, 0, len(rm.members))
	for id := range rm.members {
		out = append(out, id)
	}
	return out
}
