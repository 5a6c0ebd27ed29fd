package services

import (
	"errors"
	"fmt"
	"strings"

	"messageapp/internal/access"
	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/pagination"
	"messageapp/internal/repositories"
	"messageapp/internal/validation"
	"messageapp/pkg/rabbitmq"

	"github.com/samber/lo"
)

// MsgInvalidUsernames is returned when chat creation names an unknown user.
const MsgInvalidUsernames = "one or more usernames are invalid"

// ChatService handles chats and their membership.
type ChatService struct {
	chatRepo repositories.ChatRepository
	userRepo repositories.UserRepository
	policy   *access.Policy
	validate *validation.Validator
	events   EventPublisher
	cfg      Config
}

func NewChatService(chatRepo repositories.ChatRepository, userRepo repositories.UserRepository, policy *access.Policy, cfg Config, events EventPublisher) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		policy:   policy,
		validate: validation.New(),
		events:   events,
		cfg:      cfg.withDefaults(),
	}
}

type CreateChatInput struct {
	Title     string   `json:"title" validate:"required,notblank,max=255"`
	Usernames []string `json:"usernames" validate:"required,min=1,dive,required"`
}

type RenameChatInput struct {
	ChatID   uint   `json:"chatId" validate:"required,gt=0"`
	NewTitle string `json:"newTitle" validate:"required,notblank,max=255"`
}

// MemberInput names one user of one chat.
type MemberInput struct {
	ChatID   uint   `json:"chatId" validate:"required,gt=0"`
	Username string `json:"username" validate:"required"`
}

// Page lists the chats of userID, most recently active first, with members loaded.
func (s *ChatService) Page(userID uint, page int) (pagination.Page[models.Chat], error) {
	total, err := s.chatRepo.CountForMember(userID)
	if err != nil {
		return pagination.Page[models.Chat]{}, apperr.Internal(fmt.Errorf("failed to count chats: %w", err))
	}
	window := pagination.Paginate(total, page, s.cfg.PageSize)
	result := pagination.Page[models.Chat]{Items: []models.Chat{}, Pages: window.Pages}
	if window.Empty() {
		return result, nil
	}
	result.Items, err = s.chatRepo.ListForMember(userID, window.Offset, window.Limit)
	if err != nil {
		return pagination.Page[models.Chat]{}, apperr.Internal(fmt.Errorf("failed to list chats: %w", err))
	}
	return result, nil
}

// Create makes a chat whose members are the named users plus the creator.
func (s *ChatService) Create(creatorID uint, in CreateChatInput) (*models.Chat, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Usernames = lo.Map(in.Usernames, func(name string, _ int) string { return strings.TrimSpace(name) })
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	usernames := lo.Uniq(in.Usernames)
	users, err := s.userRepo.GetByUsernames(usernames)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to resolve usernames: %w", err))
	}
	if len(users) != len(usernames) {
		return nil, apperr.Validation(MsgInvalidUsernames)
	}

	memberIDs := lo.Uniq(append(
		lo.Map(users, func(u models.User, _ int) uint { return u.ID }),
		creatorID,
	))
	chat := &models.Chat{Title: in.Title}
	if err := s.chatRepo.Create(chat, memberIDs); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create chat: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.ChatCreated, ActorID: creatorID, ChatID: chat.ID})
	return chat, nil
}

func (s *ChatService) Rename(userID uint, in RenameChatInput) (*models.Chat, error) {
	in.NewTitle = strings.TrimSpace(in.NewTitle)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.policy.ChatForMember(in.ChatID, userID); err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.Rename(in.ChatID, in.NewTitle)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgChatAccess)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to rename chat: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.ChatRenamed, ActorID: userID, ChatID: chat.ID})
	return chat, nil
}

// AddMember joins the named user to a chat the caller belongs to.
// Adding a current member succeeds without change.
func (s *ChatService) AddMember(userID uint, in MemberInput) (*models.User, error) {
	target, err := s.memberTarget(userID, &in)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.AddMember(in.ChatID, target.ID); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to add member: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.ChatMemberAdded, ActorID: userID, ChatID: in.ChatID, UserID: target.ID})
	return target, nil
}

// RemoveMember drops the named user from a chat the caller belongs to.
// Any member may remove any member, themselves included.
func (s *ChatService) RemoveMember(userID uint, in MemberInput) error {
	target, err := s.memberTarget(userID, &in)
	if err != nil {
		return err
	}
	err = s.chatRepo.RemoveMember(in.ChatID, target.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to remove member: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.ChatMemberRemoved, ActorID: userID, ChatID: in.ChatID, UserID: target.ID})
	return nil
}

func (s *ChatService) memberTarget(userID uint, in *MemberInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.policy.ChatForMember(in.ChatID, userID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByUsername(in.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to resolve member: %w", err))
	}
	return target, nil
}

func (s *ChatService) Members(userID, chatID uint) ([]models.User, error) {
	if _, err := s.policy.ChatForMember(chatID, userID); err != nil {
		return nil, err
	}
	users, err := s.chatRepo.Members(chatID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list members: %w", err))
	}
	return users, nil
}
