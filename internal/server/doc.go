// Package server implements the Hallway real-time messaging coordinator: the
// WebSocket hub, presence and room registries, bounded message history, the
// per-message aggregators (reactions, read receipts), and the typing tracker.
//
// The implementation is organized into specialized files for configuration,
// protocol types, chat state, clients, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows.
package server
