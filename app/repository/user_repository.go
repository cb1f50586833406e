package repository

import (
	"university-results-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the database contract for user accounts and student
// profiles. Identity management proper lives outside this core; the
// workflow only needs login lookup and the user-to-student mapping.
type UserRepository interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)

	FindStudentByID(id uuid.UUID) (*model.StudentProfile, error)
	FindStudentByUserID(userID uuid.UUID) (*model.StudentProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new userRepository instance.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByEmail looks a user up for login.
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindStudentByID(id uuid.UUID) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.db.Preload("User").Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *userRepository) FindStudentByUserID(userID uuid.UUID) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.db.Where("user_id = ?", userID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}
