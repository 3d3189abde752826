// Package server defines the JSON event protocol exchanged with clients and
// the shared message types reused across client and hub logic.
package server

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// Inbound event names (client to server).
const (
	EventUserJoin        = "user_join"
	EventSendMessage     = "send_message"
	EventPrivateMessage  = "private_message"
	EventTyping          = "typing"
	EventJoinRoom        = "join_room"
	EventSendRoomMessage = "send_room_message"
	EventSendFile        = "send_file"
	EventAddReaction     = "add_reaction"
	EventMarkAsRead      = "mark_as_read"
	EventSearchMessages  = "search_messages"
)

// Outbound event names (server to clients).
const (
	EventUserList          = "user_list"
	EventUserJoined        = "user_joined"
	EventUserLeft          = "user_left"
	EventReceiveMessage    = "receive_message"
	EventRoomMessages      = "room_messages"
	EventUserJoinedRoom    = "user_joined_room"
	EventReceiveRoomMsg    = "receive_room_message"
	EventReceiveFile       = "receive_file"
	EventTypingUsers       = "typing_users"
	EventReactionUpdate    = "reaction_update"
	EventReadReceiptUpdate = "read_receipt_update"
	EventSearchResults     = "search_results"
)

// Envelope is the framing shared by every inbound and outbound event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// User is the identity bound to one live connection for its lifetime.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message represents a chat message in any scope: global, room, direct, or
// file. A message is immutable once created; its ID keys the reaction and
// read-receipt aggregators.
type Message struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	SenderID  string `json:"senderId"`
	Text      string `json:"message,omitempty"`
	Room      string `json:"room,omitempty"`
	Timestamp string `json:"timestamp"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
	IsFile    bool   `json:"isFile,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileData  string `json:"fileData,omitempty"`
	FileType  string `json:"fileType,omitempty"`
}

// Inbound payloads.
type userJoinPayload struct {
	Username string `json:"username"`
}

type sendMessagePayload struct {
	Message string `json:"message"`
}

type privateMessagePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type typingPayload struct {
	IsTyping bool `json:"isTyping"`
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type sendRoomMessagePayload struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

type sendFilePayload struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
	FileType string `json:"fileType"`
	Room     string `json:"room,omitempty"`
}

type addReactionPayload struct {
	MessageID int64  `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type markAsReadPayload struct {
	MessageID int64 `json:"messageId"`
}

type searchMessagesPayload struct {
	Query string `json:"query"`
	Room  string `json:"room,omitempty"`
}

// Outbound payloads.
type roomMessagesPayload struct {
	Room     string    `json:"room"`
	Messages []Message `json:"messages"`
}

type userJoinedRoomPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type reactionUpdatePayload struct {
	MessageID int64               `json:"messageId"`
	Reactions map[string][]string `json:"reactions"`
}

type readReceiptUpdatePayload struct {
	MessageID int64    `json:"messageId"`
	ReadBy    []string `json:"readBy"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Payload: raw})
}

var lastMessageID atomic.Int64

// nextMessageID returns a process-wide unique, strictly increasing message
// identifier. Identifiers track wall-clock milliseconds but never repeat, even
// for sends landing inside the same clock tick.
func nextMessageID() int64 {
	for {
		last := lastMessageID.Load()
		id := time.Now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if lastMessageID.CompareAndSwap(last, id) {
			return id
		}
	}
}

func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
