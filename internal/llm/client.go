// Package llm は外部の文章生成サービスとの境界を提供する。
// GeminiのOpenAI互換エンドポイントをopenai-goで呼び出す。
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultTimeout は1回の生成呼び出しに対するデフォルトのタイムアウト。
const DefaultTimeout = 30 * time.Second

// ErrEmptyCompletion は生成結果に候補が含まれない場合のエラー。
var ErrEmptyCompletion = errors.New("llm: completion has no choices")

// Generator はプロンプトから文章を生成するインターフェース。
// emotion.Classifierとchat.Serviceが利用する。
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Observer は生成呼び出しの結果を記録するインターフェース。
// metrics.Collectorが満たす。
type Observer interface {
	ObserveGeneration(elapsed time.Duration, err error)
}

// Config はClientの設定を保持する。
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client はOpenAI互換APIを利用するGeneratorの実装。
type Client struct {
	api      openaigo.Client
	model    string
	observer Observer
}

// Option はClientの任意設定。
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	observer   Observer
}

// WithHTTPClient は利用するhttp.Clientを差し替える。
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithObserver は生成呼び出しの計測先を設定する。
func WithObserver(obs Observer) Option {
	return func(o *clientOptions) { o.observer = obs }
}

// NewClient は新しいClientを生成する。
// SDKによるリトライは行わない。
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm: model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: timeout}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}

	return &Client{
		api:      openaigo.NewClient(reqOpts...),
		model:    cfg.Model,
		observer: o.observer,
	}, nil
}

// Generate はプロンプトを1件のユーザーメッセージとして送信し、先頭候補の本文を返す。
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if c.observer != nil {
		c.observer.ObserveGeneration(time.Since(start), err)
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Generator = (*Client)(nil)
