package chat

import "sync"

// Role tags a message's author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation log. Messages are immutable once
// appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Memory is the append-only, size-bounded conversation log. When an append
// pushes the log over its bound, the two oldest messages, one user/assistant
// pair, are evicted together so the head never starts with a dangling
// unanswered user message.
type Memory struct {
	mu       sync.Mutex
	max      int
	messages []Message
}

// NewMemory creates a Memory holding at most maxMessages entries.
// maxMessages below one pair is raised to 2.
func NewMemory(maxMessages int) *Memory {
	if maxMessages < 2 {
		maxMessages = 2
	}
	return &Memory{max: maxMessages}
}

// Append adds one message, evicting the oldest pair whenever the bound is
// exceeded.
func (m *Memory) Append(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	for len(m.messages) > m.max {
		m.messages = m.messages[2:]
	}
}

// AppendTurn records a completed turn as a single update.
func (m *Memory) AppendTurn(userContent, assistantContent string) {
	m.Append(Message{Role: RoleUser, Content: userContent})
	m.Append(Message{Role: RoleAssistant, Content: assistantContent})
}

// Snapshot returns a copy of the log in append order.
func (m *Memory) Snapshot() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the current number of stored messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
