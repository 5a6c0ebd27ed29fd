package repositories

import (
	"time"

	"messageapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMChatRepository is a GORM implementation of ChatRepository.
type GORMChatRepository struct {
	db *gorm.DB
}

func NewGORMChatRepository(db *gorm.DB) *GORMChatRepository {
	return &GORMChatRepository{db: db}
}

func (r *GORMChatRepository) Create(chat *models.Chat, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Users").Create(chat).Error; err != nil {
			return translate(err, "failed to create chat %q", chat.Title)
		}
		edges := make([]models.ChatMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			edges = append(edges, models.ChatMember{ChatID: chat.ID, UserID: id})
		}
		if len(edges) > 0 {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
			if err != nil {
				return translate(err, "failed to add members to chat %d", chat.ID)
			}
		}
		users, err := members(tx, chat.ID)
		if err != nil {
			return err
		}
		chat.Users = users
		return nil
	})
}

func (r *GORMChatRepository) FindForMember(chatID, userID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id AND chat_members.user_id = ?", userID).
		Where("chats.id = ?", chatID).
		First(&chat).Error
	if err != nil {
		return nil, translate(err, "chat %d for member %d", chatID, userID)
	}
	return &chat, nil
}

func (r *GORMChatRepository) ListForMember(userID uint, offset, limit int) ([]models.Chat, error) {
	chats := []models.Chat{}
	err := r.db.
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Order("chats.id DESC").
		Offset(offset).
		Limit(limit).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") }).
		Find(&chats).Error
	if err != nil {
		return nil, translate(err, "failed to list chats of user %d", userID)
	}
	return chats, nil
}

func (r *GORMChatRepository) CountForMember(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChatMember{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, translate(err, "failed to count chats of user %d", userID)
	}
	return count, nil
}

func (r *GORMChatRepository) Rename(chatID uint, title string) (*models.Chat, error) {
	res := r.db.Model(&models.Chat{}).Where("id = ?", chatID).Update("title", title)
	if res.Error != nil {
		return nil, translate(res.Error, "failed to rename chat %d", chatID)
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "chat with ID %d", chatID)
	}
	var chat models.Chat
	if err := r.db.First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, translate(err, "chat with ID %d", chatID)
	}
	return &chat, nil
}

// AddMember joins userID to the chat. Joining twice is a no-op.
func (r *GORMChatRepository) AddMember(chatID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		edge := models.ChatMember{ChatID: chatID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return translate(err, "failed to add user %d to chat %d", userID, chatID)
		}
		return touch(tx, chatID)
	})
}

func (r *GORMChatRepository) RemoveMember(chatID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("chat_id = ? AND user_id = ?", chatID, userID).Delete(&models.ChatMember{})
		if res.Error != nil {
			return translate(res.Error, "failed to remove user %d from chat %d", userID, chatID)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "user %d in chat %d", userID, chatID)
		}
		return touch(tx, chatID)
	})
}

func (r *GORMChatRepository) IsMember(chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check membership of user %d in chat %d", userID, chatID)
	}
	return count > 0, nil
}

func (r *GORMChatRepository) Members(chatID uint) ([]models.User, error) {
	return members(r.db, chatID)
}

func members(db *gorm.DB, chatID uint) ([]models.User, error) {
	users := []models.User{}
	err := db.
		Joins("JOIN chat_members ON chat_members.user_id = users.id").
		Where("chat_members.chat_id = ?", chatID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to load members of chat %d", chatID)
	}
	return users, nil
}

// touch marks chat activity so that chat pages stay newest-first.
func touch(db *gorm.DB, chatID uint) error {
	err := db.Model(&models.Chat{}).Where("id = ?", chatID).UpdateColumn("updated_at", time.Now()).Error
	if err != nil {
		return translate(err, "failed to touch chat %d", chatID)
	}
	return nil
}
