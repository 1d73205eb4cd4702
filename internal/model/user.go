package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには含めない。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Photo        string // Base64エンコードされたプロフィール画像
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity はトークンに埋め込まれる認証済みユーザーの識別情報を表す。
// ユーザーの永続データは所有せず、参照のみを行う。
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Identity はユーザーからトークン用の識別情報を取り出す。
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
