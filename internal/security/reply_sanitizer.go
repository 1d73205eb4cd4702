// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ReplySanitizer は生成モデルが返した文章からHTMLマークアップを取り除き、
// クライアントがそのまま表示できるプレーンテキストにする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はテキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize は全てのタグを除去したプレーンテキストを返す。
	// script, styleタグは内容ごと除去される。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// ReplySanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフで、複数リクエストから共有できる。
type ReplySanitizer struct {
	policy *bluemonday.Policy
}

// NewReplySanitizer は全てのタグを許可しないポリシーでReplySanitizerを生成する。
func NewReplySanitizer() *ReplySanitizer {
	return &ReplySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタグを除去し、前後の空白を取り除いたテキストを返す。
// bluemondayがエスケープした文字実体はJSONで返すため元に戻す。
func (s *ReplySanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

var _ TextSanitizer = (*ReplySanitizer)(nil)
