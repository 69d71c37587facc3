// internal/models/conversation.go
package models

// ConversationMessage is a single turn in the conversation history.
type ConversationMessage struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}
