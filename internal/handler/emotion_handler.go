package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/mindblown/internal/model"
)

// JournalServiceInterface は感情記録ハンドラーが必要とするサービスインターフェース。
type JournalServiceInterface interface {
	RecordObservation(ctx context.Context, userID, text string) (*model.Observation, error)
	ListObservations(ctx context.Context, userID string) ([]*model.Observation, error)
}

// EmotionHandler は感情分析と記録履歴のHTTPハンドラー。
type EmotionHandler struct {
	service JournalServiceInterface
}

// NewEmotionHandler はEmotionHandlerを生成する。
func NewEmotionHandler(service JournalServiceInterface) *EmotionHandler {
	return &EmotionHandler{service: service}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	OriginalText    string `json:"original_text"`
	DetectedEmotion string `json:"detected_emotion"`
}

// observationResponse は記録履歴の1件を表すJSONレスポンス。
type observationResponse struct {
	ID              string    `json:"id"`
	User            string    `json:"user"`
	OriginalText    string    `json:"originalText"`
	DetectedEmotion string    `json:"detectedEmotion"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toObservationResponse(obs *model.Observation) observationResponse {
	return observationResponse{
		ID:              obs.ID,
		User:            obs.UserID,
		OriginalText:    obs.OriginalText,
		DetectedEmotion: string(obs.DetectedEmotion),
		CreatedAt:       obs.CreatedAt,
	}
}

// Analyze はテキストの感情を分類し、その日の記録として保存する。
// POST /emotion/analyze
func (h *EmotionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	obs, err := h.service.RecordObservation(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		OriginalText:    obs.OriginalText,
		DetectedEmotion: string(obs.DetectedEmotion),
	})
}

// History は認証済みユーザーの記録を新しい順に返す。
// GET /attendance/history
func (h *EmotionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	observations, err := h.service.ListObservations(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]observationResponse, 0, len(observations))
	for _, obs := range observations {
		resp = append(resp, toObservationResponse(obs))
	}

	writeJSON(w, http.StatusOK, resp)
}
