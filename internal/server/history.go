// Package server keeps bounded, insertion-ordered message history for the
// global scope and for each room.
package server

// messageLog is a fixed-capacity message sequence with FIFO eviction: once
// capacity is reached, every append evicts the oldest entry. Backed by a ring
// buffer so appends stay O(1).
type messageLog struct {
	buf   []Message
	start int
	count int
}

func newMessageLog(capacity int) *messageLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &messageLog{buf: make([]Message, capacity)}
}

func (l *messageLog) append(m Message) {
	if l.count < len(l.buf) {
		l.buf[(l.start+l.count)%len(l.buf)] = m
		l.count++
		return
	}
	// Full: overwrite the oldest slot and advance the head.
	l.buf[l.start] = m
	l.start = (l.start + 1) % len(l.buf)
}

// snapshot returns a copy of the log in arrival order. The copy only ever
// contains fully appended messages, so readers can range over it freely.
func (l *messageLog) snapshot() []Message {
	out := make([]Message, 0, l.count)
	for i := 0; i < l.count; i++ {
		out = append(out, l.buf[(l.start+i)%len(l.buf)])
	}
	return out
}

func (l *messageLog) len() int {
	return l.count
}
