// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/mindblown/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのBearerスキーム接頭辞。
const bearerPrefix = "Bearer "

// tokenHeaders はトークンを探索するヘッダーの優先順位。
// Goのhttp.Headerは正規化されるため、authorizationとAuthorizationは同一キーとして扱われる。
var tokenHeaders = []string{"x-auth-token", "authorization", "Authorization"}

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みidentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenVerifier はトークン検証に必要なインターフェース。
// token.Serviceが満たす。
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// NewAuthMiddleware はリクエストヘッダーからトークンを取り出して検証し、
// 認証済みidentityをリクエストコンテキストに注入するミドルウェアを返す。
// トークンがない場合・検証に失敗した場合は401 Unauthorizedを返す。
// DBアクセスは行わない。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. ヘッダーからトークンを取得
			token := ExtractToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenMissingError())
				return
			}

			// 2. トークンを検証
			identity, err := verifier.Verify(token)
			if err != nil {
				slog.Warn("token verification failed",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenMalformedError())
				return
			}

			// 3. 認証済みidentityをコンテキストに注入
			setLogUserID(r.Context(), identity.UserID)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), *identity)))
		})
	}
}

// ExtractToken はx-auth-token、authorization、Authorizationの順にヘッダーを確認し、
// 最初に見つかったトークンを返す。
// "Bearer <token>"形式の場合は接頭辞を除去し、先頭の空白を取り除く。
// 見つからない場合は空文字列を返す。
func ExtractToken(r *http.Request) string {
	var token string
	for _, name := range tokenHeaders {
		if v := r.Header.Get(name); v != "" {
			token = v
			break
		}
	}

	if strings.HasPrefix(token, bearerPrefix) {
		token = strings.TrimLeft(token[len(bearerPrefix):], " \t")
	}

	return token
}

// IdentityFromContext はリクエストコンテキストから認証済みidentityを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok || identity.UserID == "" {
		return model.Identity{}, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	identity, err := IdentityFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.UserID, nil
}

// ContextWithIdentity はコンテキストにidentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// ContextWithUserID はコンテキストにユーザーIDのみを持つidentityを注入する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithIdentity(ctx, model.Identity{UserID: userID})
}
