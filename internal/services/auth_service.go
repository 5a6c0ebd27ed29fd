package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/repositories"
	"messageapp/internal/validation"
	"messageapp/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// MsgAccountTaken is returned when registration or a profile update hits a
// unique email or username.
const MsgAccountTaken = "email or username already exists"

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	validate   *validation.Validator
	events     EventPublisher
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, cfg Config, events EventPublisher) *AuthService {
	cfg = cfg.withDefaults()
	return &AuthService{
		userRepo:   userRepo,
		validate:   validation.New(),
		events:     events,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Name     string `json:"name" validate:"required"`
}

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	UserID uint   `json:"userId"`
	Token  string `json:"token"`
}

// Register creates an account, stores only the password hash and signs a token.
func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(in.Email, in.Username, 0); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict(MsgAccountTaken)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to register user: %w", err))
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.UserRegistered, ActorID: user.ID, UserID: user.ID})
	return &AuthResult{UserID: user.ID, Token: token}, nil
}

// ensureAvailable fails with a conflict if email or username belongs to a
// user other than selfID.
func (s *AuthService) ensureAvailable(email, username string, selfID uint) error {
	lookups := []func() (*models.User, error){
		func() (*models.User, error) { return s.userRepo.GetByEmail(email) },
		func() (*models.User, error) { return s.userRepo.GetByUsername(username) },
	}
	for _, lookup := range lookups {
		existing, err := lookup()
		switch {
		case errors.Is(err, repositories.ErrNotFound):
		case err != nil:
			return apperr.Internal(fmt.Errorf("checking account uniqueness: %w", err))
		case existing != nil && existing.ID != selfID:
			return apperr.Conflict(MsgAccountTaken)
		}
	}
	return nil
}

// Login authenticates by email or username. Unknown users and wrong
// passwords produce the same error.
func (s *AuthService) Login(in LoginInput) (*AuthResult, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByIdentifier(in.Identifier)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Auth(apperr.MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to load user: %w", err))
	}
	if !checkPassword(user.PasswordHash, in.Password) {
		return nil, apperr.Auth(apperr.MsgInvalidCredentials)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Token: token}, nil
}

// IssueToken signs an HS256 token for user valid for the configured TTL.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"jti":      uuid.NewString(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
// A token without an expiry claim is rejected.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, invalidToken(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, invalidToken(errors.New("claims rejected"))
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, invalidToken(errors.New("missing exp claim"))
	}
	return claims, nil
}

// VerifyToken validates the token and resolves its subject. A deleted
// account invalidates every token issued to it.
func (s *AuthService) VerifyToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 1 || rawID != float64(uint(rawID)) {
		return nil, invalidToken(fmt.Errorf("bad user_id claim %v", claims["user_id"]))
	}

	user, err := s.userRepo.GetByID(uint(rawID))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, invalidToken(err)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to resolve token subject: %w", err))
	}
	return user, nil
}

func invalidToken(cause error) *apperr.Error {
	return &apperr.Error{Kind: apperr.KindAuth, Message: apperr.MsgInvalidToken, Err: cause}
}
