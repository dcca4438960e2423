package repository

import (
	"context"

	"go-grocery/apps/store/model"

	"gorm.io/gorm"
)

type UserRepository struct{ DB *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{DB: db} }

// FindActive returns gorm.ErrRecordNotFound for unknown or disabled users.
func (r *UserRepository) FindActive(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FirstOrCreate looks the user up by username and creates it when missing.
func (r *UserRepository) FirstOrCreate(ctx context.Context, u *model.User) error {
	return r.DB.WithContext(ctx).Where(model.User{Username: u.Username}).FirstOrCreate(u).Error
}
