package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/mindblown/internal/chat"
)

// ChatServiceInterface は相談チャットハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	Reply(ctx context.Context, userID, message string) (*chat.Reply, error)
}

// ChatHandler は相談チャットのHTTPハンドラー。
type ChatHandler struct {
	service ChatServiceInterface
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(service ChatServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

// Curhat はメッセージに対する応答を返す。
// POST /chat/curhat
func (h *ChatHandler) Curhat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.service.Reply(r.Context(), userID, req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:     reply.Reply,
		Timestamp: reply.Timestamp,
	})
}
