package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// CreateMessageRequest posts an announcement to a department set
type CreateMessageRequest struct {
	Content     string   `json:"content" binding:"required,max=5000"`
	Departments []string `json:"departments" binding:"required,departments"`
}

// MessageResponse represents an announcement
type MessageResponse struct {
	ID          int64     `json:"id" example:"4"`
	Content     string    `json:"content" example:"Pre-placement talk on Friday"`
	Departments []string  `json:"departments" example:"all"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewMessageResponse converts a message model
func NewMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		Content:     m.Content,
		Departments: nonNil(m.Departments),
		CreatedAt:   m.CreatedAt,
	}
}

// NewMessageResponses converts a list of messages
func NewMessageResponses(msgs []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewMessageResponse(&msgs[i]))
	}
	return out
}
