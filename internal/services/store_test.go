package services_test

import (
	"testing"

	"messageapp/internal/access"
	"messageapp/internal/database"
	"messageapp/internal/models"
	"messageapp/internal/repositories"
	"messageapp/internal/services"
	"messageapp/pkg/rabbitmq"

	"github.com/stretchr/testify/require"
)

// suite wires every service against a fresh in-memory store.
type suite struct {
	auth     *services.AuthService
	users    *services.UserService
	chats    *services.ChatService
	messages *services.MessageService
	events   *recorder
}

// recorder collects published event types in order.
type recorder struct {
	types []string
}

func (r *recorder) PublishEvent(event rabbitmq.Event) error {
	r.types = append(r.types, event.Type)
	return nil
}

func newSuite(t *testing.T, cfg services.Config) *suite {
	t.Helper()
	db, err := database.Open(database.InMemory())
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	chatRepo := repositories.NewGORMChatRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)
	policy := access.NewPolicy(chatRepo, messageRepo)

	events := &recorder{}
	auth := services.NewAuthService(userRepo, cfg, events)
	return &suite{
		auth:     auth,
		users:    services.NewUserService(userRepo, auth, cfg, events),
		chats:    services.NewChatService(chatRepo, userRepo, policy, cfg, events),
		messages: services.NewMessageService(messageRepo, policy, cfg, events),
		events:   events,
	}
}

// register creates a user named after username and returns its id.
func (s *suite) register(t *testing.T, username string) uint {
	t.Helper()
	result, err := s.auth.Register(services.RegisterInput{
		Email:    username + "@example.com",
		Password: "secret1",
		Username: username,
		Name:     "User " + username,
	})
	require.NoError(t, err)
	return result.UserID
}

func (s *suite) createChat(t *testing.T, creator uint, title string, usernames ...string) *models.Chat {
	t.Helper()
	chat, err := s.chats.Create(creator, services.CreateChatInput{Title: title, Usernames: usernames})
	require.NoError(t, err)
	return chat
}
