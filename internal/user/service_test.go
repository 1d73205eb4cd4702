package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mindblown/internal/model"
	"github.com/hitoshi/mindblown/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.User, error)
	updateProfileFn func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, user)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func storedUser() *model.User {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           "user-1",
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "$2a$10$hash",
		Photo:        "data:image/png;base64,AAAA",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func findReturning(user *model.User) func(ctx context.Context, id string) (*model.User, error) {
	return func(ctx context.Context, id string) (*model.User, error) {
		if user != nil && id == user.ID {
			return user, nil
		}
		return nil, nil
	}
}

func assertErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("code = %q, want %q", apiErr.Code, wantCode)
	}
}

// --- GetProfile ---

func TestGetProfile_Success(t *testing.T) {
	svc := NewService(&mockUserRepo{findByIDFn: findReturning(storedUser())})

	user, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if user.Username != "budi" || user.Email != "budi@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestGetProfile_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	_, err := svc.GetProfile(context.Background(), "deleted-user")
	assertErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestGetProfile_RepoError(t *testing.T) {
	svc := NewService(&mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, err := svc.GetProfile(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "failed to get user: ") {
		t.Errorf("error = %q, want wrapped with %q", err.Error(), "failed to get user: ")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("repository failure should not be an APIError, got %v", apiErr)
	}
}

// --- UpdateProfile ---

func TestUpdateProfile_OnlyProvidedFieldsChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		update    ProfileUpdate
		wantName  string
		wantPhoto string
	}{
		{"ユーザー名のみ", ProfileUpdate{Username: "  budi_baru "}, "budi_baru", "data:image/png;base64,AAAA"},
		{"写真のみ", ProfileUpdate{Photo: "data:image/png;base64,BBBB"}, "budi", "data:image/png;base64,BBBB"},
		{"両方", ProfileUpdate{Username: "siti", Photo: "data:image/png;base64,CCCC"}, "siti", "data:image/png;base64,CCCC"},
		{"どちらも空", ProfileUpdate{}, "budi", "data:image/png;base64,AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *model.User
			svc := NewService(&mockUserRepo{
				findByIDFn: findReturning(storedUser()),
				updateProfileFn: func(ctx context.Context, user *model.User) error {
					saved = user
					return nil
				},
			})
			svc.now = func() time.Time { return now }

			user, err := svc.UpdateProfile(context.Background(), "user-1", tt.update)
			if err != nil {
				t.Fatalf("UpdateProfile() error = %v", err)
			}
			if saved == nil {
				t.Fatal("expected UpdateProfile to be called on the repository")
			}
			if user.Username != tt.wantName {
				t.Errorf("username = %q, want %q", user.Username, tt.wantName)
			}
			if user.Photo != tt.wantPhoto {
				t.Errorf("photo = %q, want %q", user.Photo, tt.wantPhoto)
			}
			if user.Email != "budi@example.com" || user.PasswordHash != "$2a$10$hash" {
				t.Errorf("email/password must not change: %+v", user)
			}
			if !user.UpdatedAt.Equal(now) {
				t.Errorf("updatedAt = %v, want %v", user.UpdatedAt, now)
			}
		})
	}
}

func TestUpdateProfile_InvalidUsername(t *testing.T) {
	svc := NewService(&mockUserRepo{
		findByIDFn: findReturning(storedUser()),
		updateProfileFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("UpdateProfile should not be called")
			return nil
		},
	})

	_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Username: "ab"})
	assertErrorCode(t, err, model.ErrCodeInvalidUsername)
}

func TestUpdateProfile_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Photo: "x"})
	assertErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestUpdateProfile_MapsRepositoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"ユーザー名重複", repository.ErrDuplicateUsername, model.ErrCodeUsernameTaken},
		{"更新中に削除", repository.ErrNotFound, model.ErrCodeUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockUserRepo{
				findByIDFn: findReturning(storedUser()),
				updateProfileFn: func(ctx context.Context, user *model.User) error {
					return tt.repoErr
				},
			})

			_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Username: "siti"})
			assertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestUpdateProfile_RepoError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	svc := NewService(&mockUserRepo{
		findByIDFn: findReturning(storedUser()),
		updateProfileFn: func(ctx context.Context, user *model.User) error {
			return cause
		},
	})

	_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{Photo: "data:image/png;base64,AAAA"})
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want wrapping %v", err, cause)
	}
	if !strings.HasPrefix(err.Error(), "failed to update profile: ") {
		t.Errorf("error = %q, want wrapped with %q", err.Error(), "failed to update profile: ")
	}
}
