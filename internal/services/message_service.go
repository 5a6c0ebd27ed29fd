package services

import (
	"errors"
	"fmt"

	"messageapp/internal/access"
	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/pagination"
	"messageapp/internal/repositories"
	"messageapp/internal/validation"
	"messageapp/pkg/rabbitmq"
)

// MessageService handles message history and authorship-guarded edits.
type MessageService struct {
	messageRepo repositories.MessageRepository
	policy      *access.Policy
	validate    *validation.Validator
	events      EventPublisher
	cfg         Config
}

func NewMessageService(messageRepo repositories.MessageRepository, policy *access.Policy, cfg Config, events EventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		policy:      policy,
		validate:    validation.New(),
		events:      events,
		cfg:         cfg.withDefaults(),
	}
}

type CreateMessageInput struct {
	ChatID  uint   `json:"chatId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,notblank"`
}

type UpdateMessageInput struct {
	Content string `json:"content" validate:"required,notblank"`
}

// Page returns the chat and one page of its messages, newest first.
// Callers rendering a transcript reverse each page.
func (s *MessageService) Page(userID, chatID uint, page int) (*models.Chat, pagination.Page[models.Message], error) {
	var result pagination.Page[models.Message]
	chat, err := s.policy.ChatForMember(chatID, userID)
	if err != nil {
		return nil, result, err
	}

	total, err := s.messageRepo.CountForChat(chatID)
	if err != nil {
		return nil, result, apperr.Internal(fmt.Errorf("failed to count messages: %w", err))
	}
	window := pagination.Paginate(total, page, s.cfg.PageSize)
	result = pagination.Page[models.Message]{Items: []models.Message{}, Pages: window.Pages}
	if window.Empty() {
		return chat, result, nil
	}
	result.Items, err = s.messageRepo.ListForChat(chatID, window.Offset, window.Limit)
	if err != nil {
		return nil, pagination.Page[models.Message]{}, apperr.Internal(fmt.Errorf("failed to list messages: %w", err))
	}
	return chat, result, nil
}

func (s *MessageService) Create(userID uint, in CreateMessageInput) (*models.Message, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.policy.ChatForMember(in.ChatID, userID); err != nil {
		return nil, err
	}

	message := &models.Message{ChatID: in.ChatID, UserID: userID, Content: in.Content}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create message: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.MessageCreated, ActorID: userID, ChatID: message.ChatID, MessageID: message.ID})
	return message, nil
}

// Update rewrites the content of a message written by userID.
func (s *MessageService) Update(userID, messageID uint, in UpdateMessageInput) (*models.Message, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.policy.MessageForAuthor(messageID, userID); err != nil {
		return nil, err
	}

	message, err := s.messageRepo.UpdateContent(messageID, in.Content)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgMessageNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to update message: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.MessageUpdated, ActorID: userID, ChatID: message.ChatID, MessageID: message.ID})
	return message, nil
}

func (s *MessageService) Delete(userID, messageID uint) error {
	message, err := s.policy.MessageForAuthor(messageID, userID)
	if err != nil {
		return err
	}

	err = s.messageRepo.Delete(messageID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(apperr.MsgMessageNotFound)
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to delete message: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.MessageDeleted, ActorID: userID, ChatID: message.ChatID, MessageID: messageID})
	return nil
}
