// Package server serves the read-only REST query surface: point-in-time
// snapshots of the global message log and the online-user list.
package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// MessagesHandler returns the current global message log as a JSON array.
// The snapshot is point-in-time and unpaginated.
func MessagesHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, hub.GlobalMessages())
}

// UsersHandler returns the currently online identities as a JSON array in
// join order.
func UsersHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, hub.OnlineUsers())
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
