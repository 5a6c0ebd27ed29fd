package models

import "time"

// Message is a single post in a chat. Only its author may change it.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ChatID    uint      `json:"chatId" gorm:"index;not null"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
	Chat      *Chat     `json:"-"`
	User      *User     `json:"-"`
}
