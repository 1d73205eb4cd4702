// Package user はユーザープロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/mindblown/internal/auth"
	"github.com/hitoshi/mindblown/internal/model"
	"github.com/hitoshi/mindblown/internal/repository"
)

// ProfileUpdate はプロフィール更新の入力。
// 空文字列のフィールドは更新しない。
type ProfileUpdate struct {
	Username string
	Photo    string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// GetProfile は認証済みユーザーのプロフィールを取得する。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile はユーザー名とプロフィール画像を更新する。
// 指定されたフィールドのみを反映し、メールアドレスとパスワードは変更しない。
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username := auth.NormalizeUsername(update.Username); username != "" {
		if err := auth.ValidateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if update.Photo != "" {
		user.Photo = update.Photo
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, model.NewUsernameTakenError()
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("profile updated",
		slog.String("user_id", userID),
	)

	return user, nil
}
