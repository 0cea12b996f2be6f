package messages

import (
	"time"

	"github.com/wolfman30/feedback-api/internal/contacts"
	"github.com/wolfman30/feedback-api/internal/phone"
)

// Topic is an allowed category for a submitted message.
type Topic struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Message is one submitted feedback item together with its contact and topic.
type Message struct {
	ID        int64
	Contact   contacts.Contact
	Topic     Topic
	Text      string
	CreatedAt time.Time
}

// NewMessage is the row written by the submission pipeline.
type NewMessage struct {
	ContactID int64
	TopicID   int
	Text      string
}

// CreateMessageRequest represents the request body for POST /api/messages.
type CreateMessageRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	TopicID        int    `json:"topicId"`
	Text           string `json:"text"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// MessageResponse is the denormalized message returned to API callers.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	TopicID   int       `json:"topicId"`
	TopicName string    `json:"topicName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Response projects m into the API shape, formatting the phone for display.
func (m *Message) Response() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Contact.Name,
		Email:     m.Contact.Email,
		Phone:     phone.Format(m.Contact.Phone),
		TopicID:   m.Topic.ID,
		TopicName: m.Topic.Name,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
