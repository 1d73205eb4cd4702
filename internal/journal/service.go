// Package journal は1日1回の感情記録とその履歴参照を提供する。
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mindblown/internal/model"
	"github.com/hitoshi/mindblown/internal/repository"
)

// Classifier はテキストを感情ラベルへ分類するインターフェース。
// emotion.Classifierが満たす。
type Classifier interface {
	Classify(ctx context.Context, text string) (model.EmotionLabel, error)
}

// Recorder は記録結果を計測するインターフェース。
// metrics.Collectorが満たす。
type Recorder interface {
	ObserveEmotion(label model.EmotionLabel)
	ObserveConflict()
}

// noopRecorder は計測先が未設定の場合に使用する。
type noopRecorder struct{}

func (noopRecorder) ObserveEmotion(model.EmotionLabel) {}
func (noopRecorder) ObserveConflict()                  {}

// DayBounds はtを含むローカル日付の開始時刻（00:00:00.000）と終了時刻（23:59:59.999）を返す。
func DayBounds(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// Service は感情記録のユースケースを提供する。
type Service struct {
	repo       repository.ObservationRepository
	classifier Classifier
	recorder   Recorder
	now        func() time.Time
	newID      func() string
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder は計測先を設定する。
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService は新しいServiceを生成する。
// 日付の境界はサーバーのローカルタイムゾーンで判定する。
func NewService(repo repository.ObservationRepository, classifier Classifier, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		classifier: classifier,
		recorder:   noopRecorder{},
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordObservation はテキストの感情を分類し、当日の観測として保存する。
// 同じローカル日付に既に観測がある場合は分類を行わずにALREADY_RECORDED_TODAYエラーを返す。
// 分類に失敗した場合は何も保存しない。
func (s *Service) RecordObservation(ctx context.Context, userID, text string) (*model.Observation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.NewValidationError(model.ErrCodeEmptyText, "Text must not be empty")
	}

	now := s.now().Local()
	start, end := DayBounds(now)

	exists, err := s.repo.ExistsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's observation: %w", err)
	}
	if exists {
		s.recorder.ObserveConflict()
		return nil, model.NewAlreadyRecordedError()
	}

	label, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	obs := &model.Observation{
		ID:              s.newID(),
		UserID:          userID,
		OriginalText:    text,
		DetectedEmotion: label,
		ObservedOn:      start,
		CreatedAt:       now,
	}

	if err := s.repo.Create(ctx, obs); err != nil {
		// 確認と保存の間に同日の観測が作成された場合
		if errors.Is(err, repository.ErrDuplicateObservation) {
			s.recorder.ObserveConflict()
			return nil, model.NewAlreadyRecordedError()
		}
		return nil, fmt.Errorf("failed to save observation: %w", err)
	}

	s.recorder.ObserveEmotion(label)
	slog.Info("observation recorded",
		slog.String("user_id", userID),
		slog.String("emotion", string(label)),
	)

	return obs, nil
}

// ListObservations はユーザーの全観測を新しい順に返す。
// 観測がない場合は空スライスを返す。
func (s *Service) ListObservations(ctx context.Context, userID string) ([]*model.Observation, error) {
	observations, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	if observations == nil {
		return []*model.Observation{}, nil
	}
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].CreatedAt.After(observations[j].CreatedAt)
	})
	return observations, nil
}
