// Package server routes every inbound client event: it resolves the acting
// identity, applies the one mutation the event calls for, and computes the
// audience for the resulting outbound events.
package server

import (
	"encoding/json"
	"log"
)

// anonymousSender is substituted as the display name when a connection sends
// messages without ever registering an identity.
const anonymousSender = "Anonymous"

// dispatch decodes the envelope and hands the event to its handler. Malformed
// frames and unknown event names are dropped without touching shared state; a
// bad event never terminates the connection or the event loop.
func (h *Hub) dispatch(frame inboundFrame) {
	var env Envelope
	if err := json.Unmarshal(frame.data, &env); err != nil {
		log.Printf("Dropping malformed frame from %s: %v", frame.client.id, err)
		return
	}

	switch env.Event {
	case EventUserJoin:
		h.handleUserJoin(frame.client, env.Payload)
	case EventSendMessage:
		h.handleSendMessage(frame.client, env.Payload)
	case EventPrivateMessage:
		h.handlePrivateMessage(frame.client, env.Payload)
	case EventTyping:
		h.handleTyping(frame.client, env.Payload)
	case EventJoinRoom:
		h.handleJoinRoom(frame.client, env.Payload)
	case EventSendRoomMessage:
		h.handleSendRoomMessage(frame.client, env.Payload)
	case EventSendFile:
		h.handleSendFile(frame.client, env.Payload)
	case EventAddReaction:
		h.handleAddReaction(frame.client, env.Payload)
	case EventMarkAsRead:
		h.handleMarkAsRead(frame.client, env.Payload)
	case EventSearchMessages:
		h.handleSearchMessages(frame.client, env.Payload)
	default:
		log.Printf("Dropping unknown event %q from %s", env.Event, frame.client.id)
	}
}

// senderName resolves the display name for message sends, falling back to the
// anonymous placeholder when the connection never joined.
func (h *Hub) senderName(client *Client) string {
	st := h.chatState()
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if user, ok := st.presence.lookup(client.id); ok {
		return user.Username
	}
	return anonymousSender
}

// actingUser resolves the registered identity for events that require one.
func (h *Hub) actingUser(client *Client) (User, bool) {
	st := h.chatState()
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return st.presence.lookup(client.id)
}

func (h *Hub) handleUserJoin(client *Client, payload json.RawMessage) {
	var p userJoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Username == "" {
		log.Printf("Dropping malformed user_join from %s", client.id)
		return
	}

	st := h.chatState()
	h.mutex.Lock()
	user, err := st.presence.join(client.id, p.Username)
	if err != nil {
		h.mutex.Unlock()
		log.Printf("Duplicate user_join from %s ignored", client.id)
		return
	}
	users := st.presence.list()
	h.mutex.Unlock()

	log.Printf("%s joined the chat as %s", p.Username, client.id)
	h.emitAll(EventUserList, users)
	h.emitAll(EventUserJoined, user)
}

func (h *Hub) handleSendMessage(client *Client, payload json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Message == "" {
		log.Printf("Dropping malformed send_message from %s", client.id)
		return
	}

	msg := Message{
		ID:        nextMessageID(),
		Sender:    h.senderName(client),
		SenderID:  client.id,
		Text:      p.Message,
		Timestamp: timestampNow(),
	}

	st := h.chatState()
	h.mutex.Lock()
	st.global.append(msg)
	h.mutex.Unlock()

	h.emitAll(EventReceiveMessage, msg)
}

func (h *Hub) handlePrivateMessage(client *Client, payload json.RawMessage) {
	var p privateMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.To == "" || p.Message == "" {
		log.Printf("Dropping malformed private_message from %s", client.id)
		return
	}

	// Direct messages are never stored; only the two endpoints see them.
	msg := Message{
		ID:        nextMessageID(),
		Sender:    h.senderName(client),
		SenderID:  client.id,
		Text:      p.Message,
		Timestamp: timestampNow(),
		IsPrivate: true,
	}

	h.mutex.RLock()
	recipient := h.byID[p.To]
	h.mutex.RUnlock()

	h.emitTo(recipient, EventPrivateMessage, msg)
	h.emitTo(client, EventPrivateMessage, msg)
}

func (h *Hub) handleTyping(client *Client, payload json.RawMessage) {
	var p typingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("Dropping malformed typing from %s", client.id)
		return
	}

	user, ok := h.actingUser(client)
	if !ok {
		return
	}

	st := h.chatState()
	h.mutex.Lock()
	if p.IsTyping {
		st.typing.set(client.id, user.Username)
	} else {
		st.typing.clear(client.id)
	}
	typers := st.typing.list()
	h.mutex.Unlock()

	h.emitAll(EventTypingUsers, typers)
}

func (h *Hub) handleJoinRoom(client *Client, payload json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Room == "" {
		log.Printf("Dropping malformed join_room from %s", client.id)
		return
	}

	user, ok := h.actingUser(client)
	if !ok {
		return
	}

	st := h.chatState()
	h.mutex.Lock()
	rm := st.rooms.join(p.Room, client.id)
	history := rm.log.snapshot()
	members := rm.memberIDs()
	h.mutex.Unlock()

	// The joiner alone gets the replay; the whole room, joiner included,
	// hears about the arrival.
	h.emitTo(client, EventRoomMessages, roomMessagesPayload{Room: p.Room, Messages: history})
	h.emitToRoom(members, EventUserJoinedRoom, userJoinedRoomPayload{Username: user.Username, Room: p.Room})
}

func (h *Hub) handleSendRoomMessage(client *Client, payload json.RawMessage) {
	var p sendRoomMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Room == "" || p.Message == "" {
		log.Printf("Dropping malformed send_room_message from %s", client.id)
		return
	}

	msg := Message{
		ID:        nextMessageID(),
		Sender:    h.senderName(client),
		SenderID:  client.id,
		Text:      p.Message,
		Room:      p.Room,
		Timestamp: timestampNow(),
	}

	st := h.chatState()
	h.mutex.Lock()
	rm, exists := st.rooms.get(p.Room)
	if !exists {
		h.mutex.Unlock()
		// Sending to a room nobody ever joined is a caller error; the
		// message is dropped rather than silently creating the room.
		log.Printf("Dropping send_room_message from %s to unknown room %q", client.id, p.Room)
		return
	}
	rm.log.append(msg)
	members := rm.memberIDs()
	h.mutex.Unlock()

	h.emitToRoom(members, EventReceiveRoomMsg, msg)
}

func (h *Hub) handleSendFile(client *Client, payload json.RawMessage) {
	var p sendFilePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.FileName == "" || p.FileData == "" {
		log.Printf("Dropping malformed send_file from %s", client.id)
		return
	}

	msg := Message{
		ID:        nextMessageID(),
		Sender:    h.senderName(client),
		SenderID:  client.id,
		Timestamp: timestampNow(),
		IsFile:    true,
		FileName:  p.FileName,
		FileData:  p.FileData,
		FileType:  p.FileType,
	}

	st := h.chatState()
	h.mutex.Lock()
	if rm, exists := st.rooms.get(p.Room); p.Room != "" && exists {
		msg.Room = p.Room
		rm.log.append(msg)
		members := rm.memberIDs()
		h.mutex.Unlock()
		h.emitToRoom(members, EventReceiveFile, msg)
		return
	}
	st.global.append(msg)
	h.mutex.Unlock()

	h.emitAll(EventReceiveFile, msg)
}

func (h *Hub) handleAddReaction(client *Client, payload json.RawMessage) {
	var p addReactionPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.MessageID == 0 || p.Reaction == "" {
		log.Printf("Dropping malformed add_reaction from %s", client.id)
		return
	}

	user, ok := h.actingUser(client)
	if !ok {
		return
	}

	st := h.chatState()
	h.mutex.Lock()
	reactions, changed := st.reactions.add(p.MessageID, p.Reaction, user.Username)
	h.mutex.Unlock()

	// Repeated reactions are no-ops and produce no broadcast. Reaction
	// updates go to every connection regardless of the message's scope;
	// narrowing them to the room would change observable behavior.
	if !changed {
		return
	}
	h.emitAll(EventReactionUpdate, reactionUpdatePayload{MessageID: p.MessageID, Reactions: reactions})
}

func (h *Hub) handleMarkAsRead(client *Client, payload json.RawMessage) {
	var p markAsReadPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.MessageID == 0 {
		log.Printf("Dropping malformed mark_as_read from %s", client.id)
		return
	}

	user, ok := h.actingUser(client)
	if !ok {
		return
	}

	st := h.chatState()
	h.mutex.Lock()
	readers, changed := st.receipts.add(p.MessageID, user.Username)
	h.mutex.Unlock()

	if !changed {
		return
	}
	h.emitAll(EventReadReceiptUpdate, readReceiptUpdatePayload{MessageID: p.MessageID, ReadBy: readers})
}

func (h *Hub) handleSearchMessages(client *Client, payload json.RawMessage) {
	var p searchMessagesPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Query == "" {
		log.Printf("Dropping malformed search_messages from %s", client.id)
		return
	}

	st := h.chatState()
	h.mutex.RLock()
	snapshot := st.global.snapshot()
	if p.Room != "" {
		if rm, exists := st.rooms.get(p.Room); exists {
			snapshot = rm.log.snapshot()
		}
	}
	h.mutex.RUnlock()

	h.emitTo(client, EventSearchResults, searchMessages(snapshot, p.Query))
}

// handleDisconnect scrubs a departed connection from presence, every room's
// membership, and the typing set, then tells everyone. This is the only
// cleanup path; an unreachable connection surfaces here as a read error.
func (h *Hub) handleDisconnect(client *Client) {
	st := h.chatState()
	h.mutex.Lock()
	user, hadIdentity := st.presence.leave(client.id)
	st.rooms.removeConnection(client.id)
	st.typing.clear(client.id)
	users := st.presence.list()
	typers := st.typing.list()
	h.mutex.Unlock()

	if hadIdentity {
		log.Printf("%s left the chat", user.Username)
		h.emitAll(EventUserLeft, user)
	}
	h.emitAll(EventUserList, users)
	h.emitAll(EventTypingUsers, typers)
}
