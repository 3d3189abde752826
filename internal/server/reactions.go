// Package server aggregates emoji reactions per message with idempotent,
// per-user insertion semantics.
package server

// reactionBoard maps a message id to reaction symbol to the usernames that
// added it, in arrival order. A user registers a given symbol on a given
// message at most once.
type reactionBoard struct {
	byMessage map[int64]map[string][]string
}

func newReactionBoard() *reactionBoard {
	return &reactionBoard{byMessage: make(map[int64]map[string][]string)}
}

// add records the reaction and returns the message's full reaction map. The
// second result reports whether anything changed; a repeated
// (message, symbol, user) triple leaves the board untouched so callers can
// skip the redundant broadcast.
func (b *reactionBoard) add(messageID int64, symbol, username string) (map[string][]string, bool) {
	reactions, exists := b.byMessage[messageID]
	if !exists {
		reactions = make(map[string][]string)
		b.byMessage[messageID] = reactions
	}

	for _, existing := range reactions[symbol] {
		if existing == username {
			return reactions, false
		}
	}

	reactions[symbol] = append(reactions[symbol], username)
	return reactions, true
}

func (b *reactionBoard) get(messageID int64) map[string][]string {
	return b.byMessage[messageID]
}
