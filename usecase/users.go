package usecase

import (
	"context"
	"errors"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"
)

type UserService struct {
	UsersRepo *repository.UserRepo
}

// CreateUser registers a new user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, user *model.User) error {
	existing, err := s.UsersRepo.FindUserByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("username already exists")
	}

	hashed, err := services.HashPassword(user.Password)
	if err != nil {
		return err
	}

	user.UserID = utils.GenerateUserID()
	user.Password = hashed
	user.CreatedAt = time.Now()

	return s.UsersRepo.AddUser(ctx, user)
}

func (s *UserService) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.UsersRepo.FindUserByUsername(ctx, username)
}
