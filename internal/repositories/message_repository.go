package repositories

import "messageapp/internal/models"

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	// Create stores the message, loads its author and bumps the chat's activity time.
	Create(message *models.Message) error
	GetByID(id uint) (*models.Message, error)
	// ListForChat returns one window of the chat's messages, newest first.
	ListForChat(chatID uint, offset, limit int) ([]models.Message, error)
	CountForChat(chatID uint) (int64, error)
	UpdateContent(id uint, content string) (*models.Message, error)
	Delete(id uint) error
}
