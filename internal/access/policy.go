// Package access decides whether an acting user may touch a chat or a message.
//
// Chat-scoped actions require current membership, and a non-member cannot
// tell a hidden chat from a missing one. Message mutations require authorship
// only; membership is not re-checked.
package access

import (
	"errors"
	"fmt"

	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/repositories"
)

// Policy evaluates the rule table against the store.
type Policy struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
}

func NewPolicy(chats repositories.ChatRepository, messages repositories.MessageRepository) *Policy {
	return &Policy{chats: chats, messages: messages}
}

// ChatForMember returns the chat if userID currently belongs to it.
func (p *Policy) ChatForMember(chatID, userID uint) (*models.Chat, error) {
	chat, err := p.chats.FindForMember(chatID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgChatAccess)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("checking membership: %w", err))
	}
	return chat, nil
}

// MessageForAuthor returns the message if userID wrote it.
func (p *Policy) MessageForAuthor(messageID, userID uint) (*models.Message, error) {
	message, err := p.messages.GetByID(messageID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgMessageNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("loading message: %w", err))
	}
	if message.UserID != userID {
		return nil, apperr.Forbidden(apperr.MsgAccessDenied)
	}
	return message, nil
}
