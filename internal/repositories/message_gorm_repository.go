package repositories

import (
	"messageapp/internal/models"

	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{db: db}
}

func (r *GORMMessageRepository) Create(message *models.Message) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Chat", "User").Create(message).Error; err != nil {
			return translate(err, "failed to create message in chat %d", message.ChatID)
		}
		return touch(tx, message.ChatID)
	})
	if err != nil {
		return err
	}
	if err := r.db.Preload("User").First(message, "id = ?", message.ID).Error; err != nil {
		return translate(err, "message with ID %d", message.ID)
	}
	return nil
}

func (r *GORMMessageRepository) GetByID(id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.Preload("User").First(&message, "id = ?", id).Error; err != nil {
		return nil, translate(err, "message with ID %d", id)
	}
	return &message, nil
}

func (r *GORMMessageRepository) ListForChat(chatID uint, offset, limit int) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, translate(err, "failed to list messages of chat %d", chatID)
	}
	return messages, nil
}

func (r *GORMMessageRepository) CountForChat(chatID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&count).Error; err != nil {
		return 0, translate(err, "failed to count messages of chat %d", chatID)
	}
	return count, nil
}

func (r *GORMMessageRepository) UpdateContent(id uint, content string) (*models.Message, error) {
	res := r.db.Model(&models.Message{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, translate(res.Error, "failed to update message %d", id)
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "message with ID %d", id)
	}
	return r.GetByID(id)
}

// Delete deletes a message by its ID from the database.
func (r *GORMMessageRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "failed to delete message %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "message with ID %d", id)
	}
	return nil
}
