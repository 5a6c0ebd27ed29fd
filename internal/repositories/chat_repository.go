package repositories

import "messageapp/internal/models"

// ChatRepository defines the interface for chat and membership data access.
type ChatRepository interface {
	// Create inserts the chat and its initial membership edges atomically.
	Create(chat *models.Chat, memberIDs []uint) error
	// FindForMember returns the chat only if userID is one of its members.
	FindForMember(chatID, userID uint) (*models.Chat, error)
	// ListForMember returns chats of userID, newest-updated first, with members loaded.
	ListForMember(userID uint, offset, limit int) ([]models.Chat, error)
	CountForMember(userID uint) (int64, error)
	Rename(chatID uint, title string) (*models.Chat, error)
	AddMember(chatID, userID uint) error
	RemoveMember(chatID, userID uint) error
	IsMember(chatID, userID uint) (bool, error)
	Members(chatID uint) ([]models.User, error)
}
