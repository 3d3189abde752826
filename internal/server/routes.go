// Package server wires HTTP handlers into a router for the Hallway
// application via routing helpers.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures and returns a router with all application routes:
// health check, WebSocket endpoint, and the REST query surface.
func SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", WebSocketHandler)
	r.HandleFunc("/api/messages", MessagesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/users", UsersHandler).Methods(http.MethodGet)
	return r
}
