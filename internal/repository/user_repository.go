package repository

import (
	"context"
	"course_exam_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

// FirstOrCreate 按邮箱查找，不存在则插入
func (r *UserRepository) FirstOrCreate(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).
		Where(model.User{Email: user.Email}).
		Attrs(model.User{Name: user.Name, Password: user.Password, Role: user.Role}).
		FirstOrCreate(user).Error
}
