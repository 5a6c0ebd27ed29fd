package services_test

import (
	"fmt"
	"testing"

	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/services"
	"messageapp/pkg/rabbitmq"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_CreateRequiresMembership(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	mallory := s.register(t, "mallory")
	chat := s.createChat(t, alice, "Team", "alice")

	message, err := s.messages.Create(alice, services.CreateMessageInput{ChatID: chat.ID, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, alice, message.UserID)
	require.NotNil(t, message.User)
	assert.Equal(t, "alice", message.User.Username)

	_, err = s.messages.Create(mallory, services.CreateMessageInput{ChatID: chat.ID, Content: "let me in"})
	assertHidden(t, err)

	_, _, err = s.messages.Page(mallory, chat.ID, 0)
	assertHidden(t, err)
	_, _, err = s.messages.Page(alice, chat.ID+1, 0)
	assertHidden(t, err)

	_, err = s.messages.Create(alice, services.CreateMessageInput{ChatID: chat.ID, Content: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMessageService_OnlyAuthorMutates(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	chat := s.createChat(t, alice, "Team", "bob")

	message, err := s.messages.Create(alice, services.CreateMessageInput{ChatID: chat.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = s.messages.Update(bob, message.ID, services.UpdateMessageInput{Content: "hacked"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	err = s.messages.Delete(bob, message.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, apperr.MsgAccessDenied, apperr.From(err).Message)

	// Authorship is enough even after leaving the chat
	require.NoError(t, s.chats.RemoveMember(bob, services.MemberInput{ChatID: chat.ID, Username: "alice"}))
	updated, err := s.messages.Update(alice, message.ID, services.UpdateMessageInput{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "alice", updated.User.Username)

	require.NoError(t, s.messages.Delete(alice, message.ID))
	err = s.messages.Delete(alice, message.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, apperr.MsgMessageNotFound, apperr.From(err).Message)

	assert.Equal(t, []string{
		rabbitmq.MessageCreated, rabbitmq.ChatMemberRemoved, rabbitmq.MessageUpdated, rabbitmq.MessageDeleted,
	}, lo.Filter(s.events.types, func(typ string, _ int) bool { return typ != rabbitmq.UserRegistered && typ != rabbitmq.ChatCreated }))
}

func TestMessageService_PageIsNewestFirst(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	chat := s.createChat(t, alice, "Team", "alice")

	for i := 1; i <= 45; i++ {
		_, err := s.messages.Create(alice, services.CreateMessageInput{ChatID: chat.ID, Content: fmt.Sprintf("m%02d", i)})
		require.NoError(t, err)
	}

	var all []models.Message
	for index := 0; index < 3; index++ {
		loaded, page, err := s.messages.Page(alice, chat.ID, index)
		require.NoError(t, err)
		assert.Equal(t, chat.ID, loaded.ID)
		assert.Equal(t, 3, page.Pages)
		all = append(all, page.Items...)
	}
	require.Len(t, all, 45)
	assert.Equal(t, "m45", all[0].Content)
	assert.Equal(t, "m26", all[19].Content)
	assert.Equal(t, "m01", all[44].Content)
	assert.Len(t, lo.UniqBy(all, func(m models.Message) uint { return m.ID }), 45)

	_, page, err := s.messages.Page(alice, chat.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Pages)
}
