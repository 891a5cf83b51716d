package directory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a directory lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// Store is the read surface the reporting endpoints depend on.
type Store interface {
	GetAll() ([]User, error)
	FindByID(id uint) (*User, error)
	Count() (int64, error)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new directory row, rejecting duplicate emails.
func (r *UserRepository) Create(user *User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing User
		if err := tx.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			return fmt.Errorf("email already exists: %s", user.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email existence: %w", err)
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) GetAll() ([]User, error) {
	var users []User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) FindByID(id uint) (*User, error) {
	var user User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
