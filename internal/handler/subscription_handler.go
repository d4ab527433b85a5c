package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/subscription"
)

// SubscriptionServiceInterface は購読ハンドラーが必要とするサービスインターフェース。
type SubscriptionServiceInterface interface {
	SubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error
	UnsubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error
	SubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error
	UnsubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error
	List(ctx context.Context, actor *model.User) (*subscription.Subscriptions, error)
}

// SubscriptionHandler は購読管理のHTTPハンドラー。
type SubscriptionHandler struct {
	service SubscriptionServiceInterface
	users   ActorResolver
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface, users ActorResolver) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		users:   users,
	}
}

// subscriptionsResponse は購読一覧のAPIレスポンス。
type subscriptionsResponse struct {
	JournalistIDs []string `json:"journalist_ids"`
	PublisherIDs  []string `json:"publisher_ids"`
}

// SubscribeJournalist は記者の購読を処理する。
// PUT /api/subscriptions/journalists/:id
func (h *SubscriptionHandler) SubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.service.SubscribeJournalist(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnsubscribeJournalist は記者の購読解除を処理する。
// DELETE /api/subscriptions/journalists/:id
func (h *SubscriptionHandler) UnsubscribeJournalist(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.service.UnsubscribeJournalist(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubscribePublisher は出版社の購読を処理する。
// PUT /api/subscriptions/publishers/:id
func (h *SubscriptionHandler) SubscribePublisher(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.service.SubscribePublisher(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnsubscribePublisher は出版社の購読解除を処理する。
// DELETE /api/subscriptions/publishers/:id
func (h *SubscriptionHandler) UnsubscribePublisher(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.service.UnsubscribePublisher(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List は自分の購読一覧を返す。
// GET /api/subscriptions
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	subs, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := subscriptionsResponse{
		JournalistIDs: subs.JournalistIDs,
		PublisherIDs:  subs.PublisherIDs,
	}
	if resp.JournalistIDs == nil {
		resp.JournalistIDs = []string{}
	}
	if resp.PublisherIDs == nil {
		resp.PublisherIDs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
