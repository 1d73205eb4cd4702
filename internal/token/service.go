// Package token は署名付きの有効期限付きIDトークンの発行と検証を提供する。
// トークンはステートレスであり、サーバー側での失効（ブラックリスト）は行わない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/mindblown/internal/model"
)

// DefaultTTL はトークンの有効期間（7日間）。
const DefaultTTL = 7 * 24 * time.Hour

// ErrMissingSecret は署名用シークレットが未設定の場合に返される設定エラー。
var ErrMissingSecret = errors.New("token signing secret is not configured")

// userClaims はトークンに埋め込むユーザー情報。
type userClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// claims はJWTのクレームセット。
type claims struct {
	User userClaims `json:"user"`
	jwt.RegisteredClaims
}

// Option はServiceのオプション設定。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service はHS256で署名されたトークンを発行・検証する。
// 生成後は読み取り専用であり、並行利用に安全。
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService はServiceを生成する。
// secretが空の場合はErrMissingSecretを返す。ttlが0以下の場合はDefaultTTLを使用する。
func NewService(secret string, ttl time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue はidentityのクレームを埋め込み、発行時刻からTTL後に失効するトークンを生成する。
func (s *Service) Issue(identity model.Identity) (string, error) {
	if identity.UserID == "" {
		return "", fmt.Errorf("identity user ID is required")
	}

	now := s.now()
	c := claims{
		User: userClaims{
			ID:       identity.UserID,
			Username: identity.Username,
			Email:    identity.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたidentityを返す。
// 有効期限切れの場合はTOKEN_EXPIRED、それ以外の検証失敗はTOKEN_MALFORMEDのAPIErrorを返す。
func (s *Service) Verify(tokenString string) (*model.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.NewTokenExpiredError()
		}
		return nil, model.NewTokenMalformedError()
	}

	if c.User.ID == "" {
		return nil, model.NewTokenMalformedError()
	}

	return &model.Identity{
		UserID:   c.User.ID,
		Username: c.User.Username,
		Email:    c.User.Email,
	}, nil
}
