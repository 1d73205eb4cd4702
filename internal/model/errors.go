// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示するメッセージと原因カテゴリを含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ（レスポンスのmsgフィールド）
	Category string // カテゴリ: validation, auth, conflict, not_found, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryConflict   = "conflict"
	CategoryNotFound   = "not_found"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeMissingFields      = "MISSING_FIELDS"
	ErrCodeInvalidUsername    = "INVALID_USERNAME"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmptyMessage       = "EMPTY_MESSAGE"
	ErrCodeEmptyText          = "EMPTY_TEXT"
	ErrCodeTokenMissing       = "TOKEN_MISSING"
	ErrCodeTokenMalformed     = "TOKEN_MALFORMED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeAlreadyRecorded    = "ALREADY_RECORDED_TODAY"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeGenerationFailed   = "GENERATION_FAILED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(code, message string) *APIError {
	return &APIError{
		Code:     code,
		Message:  message,
		Category: CategoryValidation,
	}
}

// NewMissingFieldsError は必須項目の欠落エラーを生成する。
func NewMissingFieldsError() *APIError {
	return NewValidationError(ErrCodeMissingFields, "Incomplete data")
}

// NewInvalidCredentialsError は認証情報の不一致エラーを生成する。
// ユーザーの存在有無を区別しないメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return NewValidationError(ErrCodeInvalidCredentials, "Invalid credentials")
}

// NewTokenMissingError はトークン未指定エラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenMissing,
		Message:  "No token, authorization denied",
		Category: CategoryAuth,
	}
}

// NewTokenMalformedError は署名検証や解析に失敗したトークンのエラーを生成する。
func NewTokenMalformedError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenMalformed,
		Message:  "Token is not valid",
		Category: CategoryAuth,
	}
}

// NewTokenExpiredError は有効期限切れトークンのエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "Token is not valid",
		Category: CategoryAuth,
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "Username is already registered",
		Category: CategoryConflict,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "Email is already registered",
		Category: CategoryConflict,
	}
}

// NewAlreadyRecordedError は同日2回目の感情記録に対するエラーを生成する。
func NewAlreadyRecordedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyRecorded,
		Message:  "already recorded today",
		Category: CategoryConflict,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: CategoryNotFound,
	}
}

// NewGenerationFailedError は外部の文章生成サービス呼び出し失敗エラーを生成する。
func NewGenerationFailedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  message,
		Category: CategorySystem,
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Server Error",
		Category: CategorySystem,
	}
}
