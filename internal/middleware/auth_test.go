package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/mindblown/internal/model"
)

// --- モック定義 ---

type mockTokenVerifier struct {
	verifyFn func(token string) (*model.Identity, error)
}

func (m *mockTokenVerifier) Verify(token string) (*model.Identity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, model.NewTokenMalformedError()
}

// acceptToken は指定トークンのみを受け付けるVerifierを生成する。
func acceptToken(valid string, identity model.Identity) *mockTokenVerifier {
	return &mockTokenVerifier{
		verifyFn: func(token string) (*model.Identity, error) {
			if token == valid {
				id := identity
				return &id, nil
			}
			return nil, model.NewTokenMalformedError()
		},
	}
}

func decodeMsg(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body.Msg
}

// --- テスト ---

// TestExtractToken_AllSlotsAndForms は3つのヘッダースロットと生/Bearer両形式で
// 同一のトークンが取り出せることを検証する。
func TestExtractToken_AllSlotsAndForms(t *testing.T) {
	const tok = "eyJhbGciOiJIUzI1NiJ9.payload.signature"

	headers := []string{"x-auth-token", "authorization", "Authorization"}
	forms := map[string]string{
		"raw":              tok,
		"bearer":           "Bearer " + tok,
		"bearer-extra-ws":  "Bearer    " + tok,
		"bearer-tab-space": "Bearer \t" + tok,
	}

	for _, header := range headers {
		for formName, value := range forms {
			t.Run(header+"/"+formName, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
				req.Header.Set(header, value)

				if got := ExtractToken(req); got != tok {
					t.Errorf("ExtractToken() = %q, want %q", got, tok)
				}
			})
		}
	}
}

// TestExtractToken_PrefersXAuthToken はx-auth-tokenがAuthorizationより優先されることを検証する。
func TestExtractToken_PrefersXAuthToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("x-auth-token", "from-x-auth")
	req.Header.Set("Authorization", "Bearer from-authorization")

	if got := ExtractToken(req); got != "from-x-auth" {
		t.Errorf("ExtractToken() = %q, want %q", got, "from-x-auth")
	}
}

func TestExtractToken_NoHeaders_ReturnsEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)

	if got := ExtractToken(req); got != "" {
		t.Errorf("ExtractToken() = %q, want empty", got)
	}
}

// TestExtractToken_LowercaseBearer_IsKeptRaw は小文字のbearer接頭辞は除去しないことを検証する。
func TestExtractToken_LowercaseBearer_IsKeptRaw(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "bearer abc")

	if got := ExtractToken(req); got != "bearer abc" {
		t.Errorf("ExtractToken() = %q, want %q", got, "bearer abc")
	}
}

func TestAuthMiddleware_ValidToken_InjectsIdentity(t *testing.T) {
	want := model.Identity{UserID: "user-123", Username: "budi", Email: "budi@example.com"}
	mw := NewAuthMiddleware(acceptToken("valid-token", want))

	var captured model.Identity
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		captured = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if captured != want {
		t.Errorf("identity = %+v, want %+v", captured, want)
	}
}

func TestAuthMiddleware_NoToken_Returns401(t *testing.T) {
	verifierCalled := false
	mw := NewAuthMiddleware(&mockTokenVerifier{
		verifyFn: func(token string) (*model.Identity, error) {
			verifierCalled = true
			return nil, nil
		},
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if msg := decodeMsg(t, w); msg != "No token, authorization denied" {
		t.Errorf("msg = %q, want %q", msg, "No token, authorization denied")
	}
	if verifierCalled {
		t.Error("verifier should not be called without a token")
	}
}

// TestAuthMiddleware_BearerWithoutToken_Returns401 は"Bearer "のみのヘッダーをトークンなしとして扱うことを検証する。
func TestAuthMiddleware_BearerWithoutToken_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(&mockTokenVerifier{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if msg := decodeMsg(t, w); msg != "No token, authorization denied" {
		t.Errorf("msg = %q, want %q", msg, "No token, authorization denied")
	}
}

func TestAuthMiddleware_InvalidToken_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(acceptToken("valid-token", model.Identity{UserID: "user-123"}))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("x-auth-token", "forged-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if msg := decodeMsg(t, w); msg != "Token is not valid" {
		t.Errorf("msg = %q, want %q", msg, "Token is not valid")
	}
}

// TestAuthMiddleware_ExpiredToken_Returns401 は期限切れトークンも同じメッセージで拒否されることを検証する。
func TestAuthMiddleware_ExpiredToken_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(&mockTokenVerifier{
		verifyFn: func(token string) (*model.Identity, error) {
			return nil, model.NewTokenExpiredError()
		},
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "expired-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if msg := decodeMsg(t, w); msg != "Token is not valid" {
		t.Errorf("msg = %q, want %q", msg, "Token is not valid")
	}
}

func TestIdentityFromContext_Empty_ReturnsError(t *testing.T) {
	if _, err := IdentityFromContext(context.Background()); err == nil {
		t.Fatal("expected error for empty context")
	}
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Fatal("expected error for empty context")
	}
}

func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-42")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want %q", userID, "user-42")
	}
}
