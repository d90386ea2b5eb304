package match

import "time"

// Message is one chat line.
type Message struct {
	By      string
	Content string
	At      time.Time
}

// PublishMessage appends msg to the chat log.
func (m *Match) PublishMessage(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.At.IsZero() {
		msg.At = m.now()
	}
	m.chat = append(m.chat, msg)
}

// History returns the last n messages, oldest first.
func (m *Match) History(n int) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		return []Message{}
	}
	start := len(m.chat) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, 0, len(m.chat)-start)
	return append(out, m.chat[start:]...)
}
