package repositories

import "messageapp/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByIdentifier matches either the email or the username.
	GetByIdentifier(identifier string) (*models.User, error)
	GetByUsernames(usernames []string) ([]models.User, error)
	Update(user *models.User) error
	// Delete removes the user together with their memberships and messages.
	Delete(id uint) error
	ListExcluding(excludeID uint, offset, limit int) ([]models.User, error)
	CountExcluding(excludeID uint) (int64, error)
	// Search does a case-insensitive substring match on username or name.
	Search(excludeID uint, query string, limit int) ([]models.User, error)
}
