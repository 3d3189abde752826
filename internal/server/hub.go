// Package server coordinates client registration, event dispatch, and
// connection cleanup for the Hallway messaging system via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// inboundFrame pairs a raw client frame with its originating connection so
// the dispatcher can resolve the acting identity.
type inboundFrame struct {
	client *Client
	data   []byte
}

// chatState is the mutable shared state of the coordinator. Every mutation
// runs on the hub's single event-processing goroutine, so no event ever
// observes another event's partially applied mutation.
type chatState struct {
	presence  *presenceRegistry
	rooms     *roomDirectory
	global    *messageLog
	reactions *reactionBoard
	receipts  *receiptBoard
	typing    *typingTracker
}

// Hub manages all WebSocket client connections, owns the chat state, and
// routes every inbound event to its audience. Client registration and all
// state mutations are serialized through the Run loop; the mutex additionally
// lets HTTP handlers take read-only snapshots.
type Hub struct {
	clients    map[*Client]bool
	byID       map[string]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	state      *chatState
	stateOnce  sync.Once
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary
// channels and maps. The returned Hub is ready to manage connections once
// Run is started.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		byID:       make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

var hub = NewHub()

// GetRegisterChan returns the channel used for registering new clients to the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// chatState lazily builds the shared state so retention capacity reflects the
// configuration active when the hub first handles traffic, not package init
// order.
func (h *Hub) chatState() *chatState {
	h.stateOnce.Do(func() {
		cfg := currentConfig()
		h.state = &chatState{
			presence:  newPresenceRegistry(),
			rooms:     newRoomDirectory(cfg.HistoryLimit),
			global:    newMessageLog(cfg.HistoryLimit),
			reactions: newReactionBoard(),
			receipts:  newReceiptBoard(),
			typing:    newTypingTracker(),
		}
	})
	return h.state
}

// Run starts the hub's main event loop, handling client registration,
// unregistration, and inbound event dispatch. This method should be called in
// a separate goroutine as it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client] = true
			h.byID[client.id] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s connected from %s. Total clients: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				delete(h.byID, client.id)
				client.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				// Close the channel after releasing the lock
				close(client.send)
				log.Printf("Client %s disconnected from %s. Total clients: %d", client.id, client.addr, clientCount)
				h.handleDisconnect(client)
			} else {
				h.mutex.Unlock()
			}

		case frame := <-h.inbound:
			h.dispatch(frame)
		}
	}
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	_, exists := h.clients[client]
	if !exists || client.closed {
		return false
	}

	// Try to send the message (channel might be closed, so we need to recover from panic)
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// emit marshals the event once and delivers it to every target. Delivery is
// fire-and-forget: targets whose send buffer is full are dropped and cleaned
// up, never retried, and a failed delivery does not roll back the mutation
// that produced it.
func (h *Hub) emit(event string, payload any, targets []*Client) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}

	var clientsToRemove []*Client
	for _, client := range targets {
		if !h.safeSend(client, data) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}
	h.removeFailedClients(clientsToRemove)
}

// emitAll delivers the event to every connected client.
func (h *Hub) emitAll(event string, payload any) {
	h.emit(event, payload, h.getClientSnapshot())
}

// emitTo delivers the event to a single client.
func (h *Hub) emitTo(client *Client, event string, payload any) {
	if client == nil {
		return
	}
	h.emit(event, payload, []*Client{client})
}

// emitToRoom delivers the event to the current members of the room.
func (h *Hub) emitToRoom(memberIDs []string, event string, payload any) {
	h.mutex.RLock()
	targets := make([]*Client, 0, len(memberIDs))
	for _, id := range memberIDs {
		if client, ok := h.byID[id]; ok {
			targets = append(targets, client)
		}
	}
	h.mutex.RUnlock()

	h.emit(event, payload, targets)
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// removeFailedClients removes clients that failed to receive messages, closes
// their channels, and scrubs their presence so a wedged connection does not
// linger in the user list.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var removed []*Client
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client]; exists {
			delete(h.clients, client)
			delete(h.byID, client.id)
			client.closed = true
			removed = append(removed, client)
			channelsToClose = append(channelsToClose, client.send)
			log.Printf("Client %s removed due to full send buffer", client.id)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}

	for _, client := range removed {
		h.handleDisconnect(client)
	}
}

// OnlineUsers returns a point-in-time snapshot of every registered identity
// in join order.
func (h *Hub) OnlineUsers() []User {
	st := h.chatState()
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return st.presence.list()
}

// GlobalMessages returns a point-in-time snapshot of the global message log
// in arrival order.
func (h *Hub) GlobalMessages() []Message {
	st := h.chatState()
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return st.global.snapshot()
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	// Close all client connections
	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines
// to complete. It returns after all client connections are closed and
// goroutines have finished, or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
