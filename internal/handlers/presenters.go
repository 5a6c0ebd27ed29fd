package handlers

import (
	"time"

	"messageapp/internal/models"

	"github.com/samber/lo"
)

type userListEntry struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type chatResponse struct {
	ID        uint                 `json:"id"`
	Title     string               `json:"title"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Users     []models.UserSummary `json:"users,omitempty"`
}

type messageAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type messageResponse struct {
	ID        uint          `json:"id"`
	Content   string        `json:"content"`
	ChatID    uint          `json:"chatId"`
	UserID    uint          `json:"userId"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	User      messageAuthor `json:"user"`
}

func summaries(users []models.User) []models.UserSummary {
	return lo.Map(users, func(u models.User, _ int) models.UserSummary { return u.Summary() })
}

func listEntries(users []models.User) []userListEntry {
	return lo.Map(users, func(u models.User, _ int) userListEntry {
		return userListEntry{ID: u.ID, Username: u.Username, Name: u.Name, CreatedAt: u.CreatedAt}
	})
}

func presentChat(chat *models.Chat) chatResponse {
	return chatResponse{
		ID:        chat.ID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
		Users:     summaries(chat.Users),
	}
}

func presentChats(chats []models.Chat) []chatResponse {
	return lo.Map(chats, func(chat models.Chat, _ int) chatResponse { return presentChat(&chat) })
}

func presentMessage(message *models.Message) messageResponse {
	resp := messageResponse{
		ID:        message.ID,
		Content:   message.Content,
		ChatID:    message.ChatID,
		UserID:    message.UserID,
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
		User:      messageAuthor{ID: message.UserID},
	}
	if message.User != nil {
		resp.User.Username = message.User.Username
	}
	return resp
}

func presentMessages(messages []models.Message) []messageResponse {
	return lo.Map(messages, func(m models.Message, _ int) messageResponse { return presentMessage(&m) })
}
