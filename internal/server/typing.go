// Package server tracks which connections are currently composing a message.
package server

// typingTracker maps connection ids to display names for connections that are
// mid-composition. Entries are transient: cleared by an explicit stop signal
// or by disconnect.
type typingTracker struct {
	byConn map[string]string
	order  []string
}

func newTypingTracker() *typingTracker {
	return &typingTracker{byConn: make(map[string]string)}
}

func (t *typingTracker) set(connID, username string) {
	if _, exists := t.byConn[connID]; !exists {
		t.order = append(t.order, connID)
	}
	t.byConn[connID] = username
}

func (t *typingTracker) clear(connID string) {
	if _, exists := t.byConn[connID]; !exists {
		return
	}
	delete(t.byConn, connID)
	for i, id := range t.order {
		if id == connID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// list returns the display names of everyone currently typing, oldest first.
func (t *typingTracker) list() []string {
	out := make([]string, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byConn[id])
	}
	return out
}
