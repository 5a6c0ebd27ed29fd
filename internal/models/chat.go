package models

import "time"

// Chat is a conversation shared by its members. Every member has equal rights.
type Chat struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"index"`
	Users     []User    `json:"-" gorm:"many2many:chat_members"`
}

// ChatMember is one membership edge. The composite key makes joining idempotent.
type ChatMember struct {
	ChatID    uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}
