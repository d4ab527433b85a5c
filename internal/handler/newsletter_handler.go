package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/newsletter"
)

// NewsletterServiceInterface はニュースレターハンドラーが必要とするサービスインターフェース。
type NewsletterServiceInterface interface {
	Create(ctx context.Context, actor *model.User, input newsletter.Input) (*model.Newsletter, error)
	Get(ctx context.Context, actor *model.User, newsletterID string) (*model.Newsletter, error)
	Edit(ctx context.Context, actor *model.User, newsletterID string, input newsletter.Input) (*model.Newsletter, error)
	Delete(ctx context.Context, actor *model.User, newsletterID string) (string, error)
	List(ctx context.Context, actor *model.User) ([]*model.Newsletter, error)
}

// NewsletterHandler はニュースレター管理のHTTPハンドラー。
type NewsletterHandler struct {
	service NewsletterServiceInterface
	users   ActorResolver
}

// NewNewsletterHandler はNewsletterHandlerを生成する。
func NewNewsletterHandler(service NewsletterServiceInterface, users ActorResolver) *NewsletterHandler {
	return &NewsletterHandler{
		service: service,
		users:   users,
	}
}

// newsletterRequest はニュースレターの作成・更新リクエストのボディ。
type newsletterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// newsletterResponse はニュースレター情報のAPIレスポンス。
type newsletterResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Journalist string `json:"journalist"`
	CreatedAt  string `json:"created_at"`
}

// Create はニュースレターの作成を処理する。
// POST /api/newsletters
func (h *NewsletterHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	created, err := h.service.Create(r.Context(), actor, newsletter.Input{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toNewsletterResponse(created))
}

// Get はニュースレター詳細を取得する。
// GET /api/newsletters/:id
func (h *NewsletterHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toNewsletterResponse(found))
}

// Update はニュースレターの更新を処理する。
// PUT /api/newsletters/:id
func (h *NewsletterHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	updated, err := h.service.Edit(r.Context(), actor, chi.URLParam(r, "id"), newsletter.Input{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toNewsletterResponse(updated))
}

// Delete はニュースレターの削除を処理する。
// DELETE /api/newsletters/:id
func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	title, err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ニュースレター「" + title + "」を削除しました。",
	})
}

// List は役割に応じたニュースレター一覧を返す。
// GET /api/newsletters
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	newsletters, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]newsletterResponse, 0, len(newsletters))
	for _, n := range newsletters {
		responses = append(responses, toNewsletterResponse(n))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// toNewsletterResponse はmodel.NewsletterからAPIレスポンスに変換する。
func toNewsletterResponse(n *model.Newsletter) newsletterResponse {
	resp := newsletterResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.Journalist != nil {
		resp.Journalist = n.Journalist.Username
	}
	return resp
}
