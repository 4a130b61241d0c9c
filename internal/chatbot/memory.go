package chatbot

// Message roles. The display history and the reasoning memory only ever
// carry these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MemoryCapacity is the reasoning window size: 4 messages, i.e. the two
// most recent exchanges.
const MemoryCapacity = 4

// BoundedMemory is the fixed-capacity sliding window of recent
// exchanges used to build the reasoning prompt. It is never used for
// display. Oldest entries are evicted first.
type BoundedMemory struct {
	capacity int
	messages []Message
}

// NewBoundedMemory creates an empty memory with the standard capacity.
func NewBoundedMemory() *BoundedMemory {
	return &BoundedMemory{capacity: MemoryCapacity}
}

// Append adds messages, evicting the oldest until the capacity holds.
func (m *BoundedMemory) Append(msgs ...Message) {
	m.messages = append(m.messages, msgs...)
	if excess := len(m.messages) - m.capacity; excess > 0 {
		m.messages = m.messages[excess:]
	}
}

// Len returns the number of messages currently held.
func (m *BoundedMemory) Len() int {
	return len(m.messages)
}

// Messages returns a copy of the window, oldest first.
func (m *BoundedMemory) Messages() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
