package domain

import (
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message represents a single chat message inside a session. Content is
// empty only while an assistant message is waiting for its first streamed
// chunk. Images are data URIs attached to user messages.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role" validate:"required,oneof=user assistant system"`
	Content   string      `json:"content"`
	Images    []string    `json:"images,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Error     bool        `json:"error,omitempty"`
}

// HasImages reports whether the message carries at least one image.
func (m Message) HasImages() bool {
	return len(m.Images) > 0
}

// ChatRequest is the body of a gateway chat call.
type ChatRequest struct {
	Messages     []Message `json:"messages" validate:"required,min=1,dive"`
	HasImages    bool      `json:"hasImages"`
	UseWebSearch bool      `json:"useWebSearch"`
}

// ChatCompletion is the non-streamed gateway response, used for
// image-bearing requests where the vision path cannot stream.
type ChatCompletion struct {
	Content  string `json:"content"`
	Finished bool   `json:"finished"`
}

// LastMessage returns the most recent message of the request, or a zero
// Message when the history is empty.
func (r ChatRequest) LastMessage() Message {
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
