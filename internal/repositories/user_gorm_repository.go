package repositories

import (
	"strings"

	"messageapp/internal/models"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user. A taken email or username yields ErrDuplicate.
func (r *GORMUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return translate(err, "failed to create user %s", user.Username)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user with ID %d", id)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err, "user with username %s", username)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, "user with email %s", email)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ? OR username = ?", identifier, identifier).
		Order("id").
		First(&user).Error
	if err != nil {
		return nil, translate(err, "user with identifier %s", identifier)
	}
	return &user, nil
}

func (r *GORMUserRepository) GetByUsernames(usernames []string) ([]models.User, error) {
	users := []models.User{}
	if len(usernames) == 0 {
		return users, nil
	}
	if err := r.db.Where("username IN ?", usernames).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err, "failed to resolve usernames")
	}
	return users, nil
}

// Update saves every column of user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Save(user)
	if res.Error != nil {
		return translate(res.Error, "failed to update user %d", user.ID)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user with ID %d", user.ID)
	}
	return nil
}

func (r *GORMUserRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return translate(err, "failed to delete messages of user %d", id)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ChatMember{}).Error; err != nil {
			return translate(err, "failed to delete memberships of user %d", id)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "failed to delete user %d", id)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "user with ID %d", id)
		}
		return nil
	})
}

func (r *GORMUserRepository) ListExcluding(excludeID uint, offset, limit int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.Where("id <> ?", excludeID).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to list users")
	}
	return users, nil
}

func (r *GORMUserRepository) CountExcluding(excludeID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id <> ?", excludeID).Count(&count).Error; err != nil {
		return 0, translate(err, "failed to count users")
	}
	return count, nil
}

func (r *GORMUserRepository) Search(excludeID uint, query string, limit int) ([]models.User, error) {
	users := []models.User{}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	err := r.db.Where("id <> ?", excludeID).
		Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("id").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "failed to search users for %q", query)
	}
	return users, nil
}
