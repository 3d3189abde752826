// Package testhelpers provides common utilities and helper functions for
// testing the Hallway server.
//
// This package contains reusable test utilities shared across unit and
// integration tests: creating test servers, making HTTP requests, dialing
// chat WebSockets, and exchanging protocol events with timeouts.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hallway-chat/hallway/internal/server"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
// It fails the test with a descriptive error message if the content types don't match.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("Failed to create %s request to %s: %v", method, url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to execute %s request to %s: %v", method, url, err)
	}
	return resp
}

// BuildWebSocketURL converts a test server's HTTP URL into the corresponding
// WebSocket endpoint URL.
func BuildWebSocketURL(t *testing.T, serverURL string) string {
	t.Helper()
	if !strings.HasPrefix(serverURL, "http") {
		t.Fatalf("Unexpected test server URL: %s", serverURL)
	}
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// DialChat opens a WebSocket connection to the test server's chat endpoint,
// presenting the server's own URL as the request origin.
func DialChat(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Origin", serverURL)
	conn, resp, err := websocket.DefaultDialer.Dial(BuildWebSocketURL(t, serverURL), header)
	if err != nil {
		t.Fatalf("Failed to dial chat endpoint: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn
}

// SendEvent writes one protocol envelope to the connection.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal %s payload: %v", event, err)
	}
	frame, err := json.Marshal(server.Envelope{Event: event, Payload: raw})
	if err != nil {
		t.Fatalf("Failed to marshal %s envelope: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// WaitForEvent reads frames until an event with the given name arrives and
// returns its payload, failing the test when the timeout elapses first.
// Events with other names are skipped.
func WaitForEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) json.RawMessage {
	t.Helper()
	return WaitForEventFunc(t, conn, event, timeout, func(json.RawMessage) bool { return true })
}

// WaitForEventFunc reads frames until an event with the given name arrives
// whose payload satisfies match, and returns that payload. Non-matching
// frames are skipped.
func WaitForEventFunc(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Timed out waiting for %s: %v", event, err)
		}

		var env server.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("Undecodable frame while waiting for %s: %v", event, err)
		}
		if env.Event == event && match(env.Payload) {
			return env.Payload
		}
	}
}

// ExpectNoEvent reads frames until the timeout elapses and fails the test if
// an event with the given name arrives in that window.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			// The deadline elapsing without the event is the pass case.
			return
		}

		var env server.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			continue
		}
		if env.Event == event {
			t.Fatalf("Received unexpected %s event: %s", event, string(env.Payload))
		}
	}
}

// CloseQuietly closes a WebSocket connection, ignoring errors from already
// closed connections.
func CloseQuietly(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}
