// Package emotion は自由記述テキストを固定の感情ラベル集合へ分類する。
package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/mindblown/internal/llm"
	"github.com/hitoshi/mindblown/internal/model"
)

// labels は分類可能な感情ラベル。プロンプト中の並び順もこの順序に従う。
var labels = []model.EmotionLabel{
	model.EmotionBahagia,
	model.EmotionSedih,
	model.EmotionMarah,
	model.EmotionTakut,
	model.EmotionJijik,
	model.EmotionTerkejut,
	model.EmotionNetral,
	model.EmotionCemas,
	model.EmotionSemangat,
	model.EmotionLelah,
}

// Labels は分類可能な感情ラベルのコピーを返す。
func Labels() []model.EmotionLabel {
	out := make([]model.EmotionLabel, len(labels))
	copy(out, labels)
	return out
}

// Normalize は生成結果の文字列を前後の空白を除去したうえで大文字小文字を区別せずに照合し、
// 正規の表記のラベルを返す。一致しない場合はmodel.DefaultEmotionを返す。
func Normalize(raw string) model.EmotionLabel {
	s := strings.TrimSpace(raw)
	for _, l := range labels {
		if strings.EqualFold(s, string(l)) {
			return l
		}
	}
	return model.DefaultEmotion
}

// Classifier は文章生成サービスを用いて感情を分類する。
type Classifier struct {
	generator llm.Generator
}

// NewClassifier は新しいClassifierを生成する。
func NewClassifier(generator llm.Generator) *Classifier {
	return &Classifier{generator: generator}
}

// Classify はテキストの主要な感情を1つのラベルとして返す。
// 生成結果が解釈できない場合はNetralを返す。
// 生成呼び出し自体が失敗した場合はGENERATION_FAILEDエラーを返す。
func (c *Classifier) Classify(ctx context.Context, text string) (model.EmotionLabel, error) {
	out, err := c.generator.Generate(ctx, BuildPrompt(text))
	if err != nil {
		slog.Error("emotion classification failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", model.NewGenerationFailedError("Failed to process attendance"), err)
	}

	label := Normalize(out)
	if label == model.DefaultEmotion && !strings.EqualFold(strings.TrimSpace(out), string(model.DefaultEmotion)) {
		slog.Info("unrecognized emotion label, using default",
			slog.String("raw", truncate(out, 40)),
		)
	}
	return label, nil
}

// BuildPrompt は分類用の指示プロンプトを組み立てる。
func BuildPrompt(text string) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analisis emosi utama dari kalimat: %q.\n", text)
	fmt.Fprintf(&b, "Kategorikan ke dalam SATU kategori: [%s].\n", strings.Join(names, ", "))
	b.WriteString("Hanya jawab dengan satu kata kategori saja.")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
