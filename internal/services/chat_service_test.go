package services_test

import (
	"testing"

	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/services"
	"messageapp/pkg/rabbitmq"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func usernames(users []models.User) []string {
	return lo.Map(users, func(u models.User, _ int) string { return u.Username })
}

func TestChatService_CreateIncludesCreator(t *testing.T) {
	s := newSuite(t, testConfig)
	s.register(t, "alice")
	s.register(t, "bob")
	carol := s.register(t, "carol")

	chat := s.createChat(t, carol, "Team", "bob", "alice", "bob")
	assert.Equal(t, "Team", chat.Title)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, usernames(chat.Users))

	// Naming yourself does not duplicate the membership edge
	solo := s.createChat(t, carol, "Notes", "carol")
	assert.Equal(t, []string{"carol"}, usernames(solo.Users))
	assert.Contains(t, s.events.types, rabbitmq.ChatCreated)
}

func TestChatService_CreateRejectsBadInput(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")

	_, err := s.chats.Create(alice, services.CreateChatInput{Title: "Team", Usernames: []string{"ghost"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, services.MsgInvalidUsernames, apperr.From(err).Message)

	_, err = s.chats.Create(alice, services.CreateChatInput{Title: "Team", Usernames: []string{}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.chats.Create(alice, services.CreateChatInput{Title: "   ", Usernames: []string{"alice"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	page, err := s.chats.Page(alice, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Pages)
}

func TestChatService_PageOrdersByActivity(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	first := s.createChat(t, alice, "first", "bob")
	second := s.createChat(t, alice, "second", "bob")
	s.createChat(t, bob, "bob only", "bob")

	page, err := s.chats.Page(alice, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)

	// New activity moves a chat to the front
	_, err = s.messages.Create(bob, services.CreateMessageInput{ChatID: first.ID, Content: "ping"})
	require.NoError(t, err)
	page, err = s.chats.Page(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, usernames(page.Items[0].Users))
	assert.Equal(t, 1, page.Pages)

	page, err = s.chats.Page(alice, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestChatService_PagePaginates(t *testing.T) {
	s := newSuite(t, services.Config{JWTSecret: testJWTSecret, BcryptCost: bcrypt.MinCost, PageSize: 3})
	alice := s.register(t, "alice")
	for i := 0; i < 7; i++ {
		s.createChat(t, alice, "chat", "alice")
	}

	seen := map[uint]bool{}
	for index := 0; index < 3; index++ {
		page, err := s.chats.Page(alice, index)
		require.NoError(t, err)
		assert.Equal(t, 3, page.Pages)
		for _, chat := range page.Items {
			assert.False(t, seen[chat.ID], "chat %d listed twice", chat.ID)
			seen[chat.ID] = true
		}
	}
	assert.Len(t, seen, 7)

	for _, index := range []int{-1, 3, 100} {
		page, err := s.chats.Page(alice, index)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	}
}

func TestChatService_MembershipGuards(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	s.register(t, "bob")
	mallory := s.register(t, "mallory")
	chat := s.createChat(t, alice, "Team", "bob")

	_, err := s.chats.Rename(mallory, services.RenameChatInput{ChatID: chat.ID, NewTitle: "Mine"})
	assertHidden(t, err)
	_, err = s.chats.Rename(mallory, services.RenameChatInput{ChatID: chat.ID + 100, NewTitle: "Mine"})
	assertHidden(t, err)
	_, err = s.chats.AddMember(mallory, services.MemberInput{ChatID: chat.ID, Username: "mallory"})
	assertHidden(t, err)
	err = s.chats.RemoveMember(mallory, services.MemberInput{ChatID: chat.ID, Username: "bob"})
	assertHidden(t, err)
	_, err = s.chats.Members(mallory, chat.ID)
	assertHidden(t, err)

	renamed, err := s.chats.Rename(alice, services.RenameChatInput{ChatID: chat.ID, NewTitle: " Renamed "})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)
}

func assertHidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, apperr.MsgChatAccess, apperr.From(err).Message)
}

func TestChatService_AddAndRemoveMembers(t *testing.T) {
	s := newSuite(t, testConfig)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	s.register(t, "carol")
	chat := s.createChat(t, alice, "Team", "bob")

	added, err := s.chats.AddMember(bob, services.MemberInput{ChatID: chat.ID, Username: "carol"})
	require.NoError(t, err)
	assert.Equal(t, "carol", added.Username)

	// Adding twice is harmless
	_, err = s.chats.AddMember(alice, services.MemberInput{ChatID: chat.ID, Username: "carol"})
	require.NoError(t, err)

	members, err := s.chats.Members(alice, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, usernames(members))

	_, err = s.chats.AddMember(alice, services.MemberInput{ChatID: chat.ID, Username: "ghost"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, apperr.MsgUserNotFound, apperr.From(err).Message)

	// Flat governance: bob may remove the chat's creator
	require.NoError(t, s.chats.RemoveMember(bob, services.MemberInput{ChatID: chat.ID, Username: "alice"}))
	_, err = s.chats.Members(alice, chat.ID)
	assertHidden(t, err)

	err = s.chats.RemoveMember(bob, services.MemberInput{ChatID: chat.ID, Username: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, apperr.MsgUserNotFound, apperr.From(err).Message)

	// Self-removal, down to an empty chat
	require.NoError(t, s.chats.RemoveMember(bob, services.MemberInput{ChatID: chat.ID, Username: "carol"}))
	require.NoError(t, s.chats.RemoveMember(bob, services.MemberInput{ChatID: chat.ID, Username: "bob"}))
	_, err = s.chats.Members(bob, chat.ID)
	assertHidden(t, err)

	assert.Contains(t, s.events.types, rabbitmq.ChatMemberAdded)
	assert.Contains(t, s.events.types, rabbitmq.ChatMemberRemoved)
}
