package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mindblown/internal/llm"
	"github.com/hitoshi/mindblown/internal/model"
	"github.com/hitoshi/mindblown/internal/security"
)

// --- モック定義 ---

type mockUserLookup struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserLookup) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	prompts    []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "Aku dengerin kok.", nil
}

var _ UserLookup = (*mockUserLookup)(nil)
var _ llm.Generator = (*mockGenerator)(nil)

func userNamed(name string) *mockUserLookup {
	return &mockUserLookup{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Username: name}, nil
		},
	}
}

func TestReply_Success(t *testing.T) {
	now := time.Date(2026, 4, 2, 21, 15, 0, 0, time.UTC)
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, prompt string) (string, error) {
			return "  Wajar kok kalau kamu merasa gitu, <b>Budi</b>.  ", nil
		},
	}
	svc := NewService(userNamed("budi"), gen, security.NewReplySanitizer())
	svc.now = func() time.Time { return now }

	reply, err := svc.Reply(context.Background(), "user-1", "aku capek banget sama kerjaan")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if reply.Reply != "Wajar kok kalau kamu merasa gitu, Budi." {
		t.Errorf("reply = %q", reply.Reply)
	}
	if !reply.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", reply.Timestamp, now)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"MindBlown Bot", "Lawan bicaramu bernama budi.", `"aku capek banget sama kerjaan"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q:\n%s", want, prompt)
		}
	}
}

func TestReply_EmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		gen := &mockGenerator{}
		svc := NewService(userNamed("budi"), gen, security.NewReplySanitizer())

		_, err := svc.Reply(context.Background(), "user-1", msg)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
		}
		if apiErr.Code != model.ErrCodeEmptyMessage || apiErr.Category != model.CategoryValidation {
			t.Errorf("error = %+v", apiErr)
		}
		if len(gen.prompts) != 0 {
			t.Error("generator should not be called for empty message")
		}
	}
}

// TestReply_FallsBackToDefaultName はユーザーが見つからない場合や取得に失敗した場合に
// 既定の呼びかけ名を使うことを検証する。
func TestReply_FallsBackToDefaultName(t *testing.T) {
	lookups := map[string]*mockUserLookup{
		"ユーザーなし": {},
		"取得エラー": {
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return nil, errors.New("db down")
			},
		},
	}

	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			gen := &mockGenerator{}
			svc := NewService(lookup, gen, security.NewReplySanitizer())

			if _, err := svc.Reply(context.Background(), "user-1", "halo"); err != nil {
				t.Fatalf("Reply() error = %v", err)
			}
			if !strings.Contains(gen.prompts[0], "Lawan bicaramu bernama Teman.") {
				t.Errorf("prompt does not use fallback name:\n%s", gen.prompts[0])
			}
		})
	}
}

func TestReply_GeneratorFailure(t *testing.T) {
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("upstream 503")
		},
	}
	svc := NewService(userNamed("budi"), gen, security.NewReplySanitizer())

	_, err := svc.Reply(context.Background(), "user-1", "halo")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != model.ErrCodeGenerationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeGenerationFailed)
	}
	if apiErr.Message != "Sorry, the AI is tired right now" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if strings.Contains(apiErr.Message, "upstream") {
		t.Error("upstream detail must not leak into user-facing message")
	}
}

func TestBuildPrompt_QuotesMessage(t *testing.T) {
	prompt := BuildPrompt("siti", `dia bilang "sudahlah"`)

	if !strings.Contains(prompt, `User berkata: "dia bilang \"sudahlah\""`) {
		t.Errorf("message is not quoted:\n%s", prompt)
	}
}
