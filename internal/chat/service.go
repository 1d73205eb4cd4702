// Package chat は共感的な相談相手として応答する会話機能を提供する。
// 会話履歴は保持せず、1メッセージごとに独立した応答を生成する。
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/mindblown/internal/llm"
	"github.com/hitoshi/mindblown/internal/model"
	"github.com/hitoshi/mindblown/internal/security"
)

// FallbackName はユーザー名が取得できない場合の呼びかけ名。
const FallbackName = "Teman"

// UserLookup はユーザー取得のインターフェース。
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Reply は生成された応答。
type Reply struct {
	Reply     string
	Timestamp time.Time
}

// Service は相談チャットのサービス層。
type Service struct {
	users     UserLookup
	generator llm.Generator
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users UserLookup, generator llm.Generator, sanitizer security.TextSanitizer) *Service {
	return &Service{
		users:     users,
		generator: generator,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Reply はユーザーのメッセージに対する応答を生成する。
func (s *Service) Reply(ctx context.Context, userID, message string) (*Reply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, model.NewValidationError(model.ErrCodeEmptyMessage, "Message must not be empty")
	}

	name := s.displayName(ctx, userID)

	out, err := s.generator.Generate(ctx, BuildPrompt(name, message))
	if err != nil {
		slog.Error("chat generation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", model.NewGenerationFailedError("Sorry, the AI is tired right now"), err)
	}

	return &Reply{
		Reply:     s.sanitizer.Sanitize(out),
		Timestamp: s.now(),
	}, nil
}

// displayName はプロンプトで呼びかけるユーザー名を返す。
// 取得に失敗した場合はFallbackNameを使う。
func (s *Service) displayName(ctx context.Context, userID string) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		slog.Warn("failed to look up user for chat",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return FallbackName
	}
	if user == nil || user.Username == "" {
		return FallbackName
	}
	return user.Username
}

// BuildPrompt は相談相手としての人格と応答ルールを含むプロンプトを組み立てる。
func BuildPrompt(name, message string) string {
	var b strings.Builder
	b.WriteString("Bertindaklah sebagai teman curhat yang sangat empatik, suportif, dan pendengar yang baik bernama \"MindBlown Bot\".\n")
	fmt.Fprintf(&b, "Lawan bicaramu bernama %s.\n\n", name)
	b.WriteString("Instruksi:\n")
	b.WriteString("1. Gunakan bahasa Indonesia yang santai, hangat, dan gaul tapi tetap sopan.\n")
	b.WriteString("2. Jangan menghakimi perasaan user.\n")
	b.WriteString("3. Berikan validasi atas perasaan mereka (contoh: \"Wajar kok kalau kamu merasa gitu...\").\n")
	b.WriteString("4. Berikan saran yang menenangkan hanya jika situasi membutuhkan, tapi fokus utamanya adalah mendengarkan.\n")
	b.WriteString("5. Jangan memberikan diagnosa medis/psikologis profesional, tapi sarankan ke profesional jika masalah terlihat sangat berat.\n")
	b.WriteString("6. Jawablah dengan singkat dan padat (maksimal 3-4 kalimat) agar nyaman dibaca di HP.\n\n")
	fmt.Fprintf(&b, "User berkata: %q", message)
	return b.String()
}
