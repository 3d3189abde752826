// Package server tracks the display identity bound to each live connection;
// the presence registry is the source of truth for who is online.
package server

import "errors"

// errDuplicateConnection is returned when a connection attempts to register a
// second identity. The connection lifecycle should make this impossible, but
// the registry guards it anyway.
var errDuplicateConnection = errors.New("connection already registered")

// presenceRegistry maps connection ids to identities and remembers join order
// so the online-user list renders in a stable sequence.
type presenceRegistry struct {
	byConn map[string]User
	order  []string
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{byConn: make(map[string]User)}
}

func (p *presenceRegistry) join(connID, username string) (User, error) {
	if _, exists := p.byConn[connID]; exists {
		return User{}, errDuplicateConnection
	}
	user := User{ID: connID, Username: username}
	p.byConn[connID] = user
	p.order = append(p.order, connID)
	return user, nil
}

// leave removes the connection's identity. Leaving twice is a no-op; the
// second call reports that nothing was removed.
func (p *presenceRegistry) leave(connID string) (User, bool) {
	user, exists := p.byConn[connID]
	if !exists {
		return User{}, false
	}
	delete(p.byConn, connID)
	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return user, true
}

func (p *presenceRegistry) lookup(connID string) (User, bool) {
	user, exists := p.byConn[connID]
	return user, exists
}

// list returns every online identity in join order.
func (p *presenceRegistry) list() []User {
	out := make([]User, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byConn[id])
	}
	return out
}
