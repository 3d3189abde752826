// Package server aggregates read receipts per message with idempotent,
// per-user insertion semantics.
package server

// receiptBoard maps a message id to the usernames that have read it, in
// arrival order. Each user is recorded at most once per message.
type receiptBoard struct {
	byMessage map[int64][]string
}

func newReceiptBoard() *receiptBoard {
	return &receiptBoard{byMessage: make(map[int64][]string)}
}

// add records that username read the message and returns the reader list. The
// second result reports whether this was a first-time add; repeats leave the
// board untouched so callers can skip the redundant broadcast.
func (b *receiptBoard) add(messageID int64, username string) ([]string, bool) {
	for _, existing := range b.byMessage[messageID] {
		if existing == username {
			return b.byMessage[messageID], false
		}
	}
	b.byMessage[messageID] = append(b.byMessage[messageID], username)
	return b.byMessage[messageID], true
}

func (b *receiptBoard) get(messageID int64) []string {
	return b.byMessage[messageID]
}
