package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PublisherListerInterface は出版社ハンドラーが必要とするインターフェース。
// repository.PublisherRepositoryの部分集合として定義する。
type PublisherListerInterface interface {
	List(ctx context.Context) ([]*model.Publisher, error)
}

// PublisherHandler は出版社一覧のHTTPハンドラー。
type PublisherHandler struct {
	publishers PublisherListerInterface
	users      ActorResolver
}

// NewPublisherHandler はPublisherHandlerを生成する。
func NewPublisherHandler(publishers PublisherListerInterface, users ActorResolver) *PublisherHandler {
	return &PublisherHandler{
		publishers: publishers,
		users:      users,
	}
}

// publisherResponse は出版社情報のAPIレスポンス。
type publisherResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List は出版社の一覧を名前順で返す。購読対象の選択に使われる。
// GET /api/publishers
func (h *PublisherHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveActor(w, r, h.users); !ok {
		return
	}

	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]publisherResponse, 0, len(publishers))
	for _, p := range publishers {
		responses = append(responses, publisherResponse{ID: p.ID, Name: p.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
