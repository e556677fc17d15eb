package models

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a user's bounded chat history.
// Sequence is the monotonic insertion order; the store keeps only the most
// recent N turns per user.
type ConversationTurn struct {
	Sequence int64  `json:"sequence"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}
