// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/mindblown/internal/model"
)

// 永続化層が返す定義済みエラー。サービス層でmodel.APIErrorへ変換する。
var (
	// ErrDuplicateUsername はユーザー名の一意制約違反。
	ErrDuplicateUsername = errors.New("repository: username already exists")
	// ErrDuplicateEmail はメールアドレスの一意制約違反。
	ErrDuplicateEmail = errors.New("repository: email already exists")
	// ErrDuplicateObservation は同一ユーザー・同一日付の観測の一意制約違反。
	ErrDuplicateObservation = errors.New("repository: observation already recorded for day")
	// ErrNotFound は更新対象の行が存在しない。
	ErrNotFound = errors.New("repository: not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// ユーザー名・メールアドレスが重複する場合はErrDuplicateUsername/ErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByEmailOrUsername はemailがメールアドレスに、またはusernameがユーザー名に一致するユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)

	// UpdateProfile はユーザー名と写真を更新する。
	// 対象が存在しない場合はErrNotFound、ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	UpdateProfile(ctx context.Context, user *model.User) error
}

// ObservationRepository は感情観測データの永続化インターフェース。
// 観測は作成のみで、更新・削除は提供しない。
type ObservationRepository interface {
	// ExistsInRange はユーザーのcreated_atが[from, to]に含まれる観測が存在するかを返す。
	ExistsInRange(ctx context.Context, userID string, from, to time.Time) (bool, error)

	// Create は観測を作成する。
	// 同一ユーザー・同一observed_onの観測が既に存在する場合はErrDuplicateObservationを返す。
	Create(ctx context.Context, obs *model.Observation) error

	// ListByUserID はユーザーの全観測をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Observation, error)
}
