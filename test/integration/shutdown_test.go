// Package integration contains graceful-shutdown tests for the HTTP layer.
package integration

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hallway-chat/hallway/internal/server"
)

// TestHTTPServerGracefulShutdown verifies ShutdownServer stops a running
// server cleanly and that StartServer reports the expected closed error.
func TestHTTPServerGracefulShutdown(t *testing.T) {
	httpServer := server.CreateServer(":0", server.SetupRoutes())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	// Give the listener a moment to come up before shutting it down.
	time.Sleep(50 * time.Millisecond)

	if err := server.ShutdownServer(httpServer, 2*time.Second); err != nil {
		t.Fatalf("ShutdownServer failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected ErrServerClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("StartServer did not return after shutdown")
	}
}

// TestCreateServerTimeouts verifies the production timeout defaults are
// applied to new servers.
func TestCreateServerTimeouts(t *testing.T) {
	httpServer := server.CreateServer(":8080", nil)

	if httpServer.ReadTimeout != 15*time.Second {
		t.Errorf("Unexpected read timeout: %v", httpServer.ReadTimeout)
	}
	if httpServer.WriteTimeout != 15*time.Second {
		t.Errorf("Unexpected write timeout: %v", httpServer.WriteTimeout)
	}
	if httpServer.IdleTimeout != 60*time.Second {
		t.Errorf("Unexpected idle timeout: %v", httpServer.IdleTimeout)
	}
}
