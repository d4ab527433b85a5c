package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	List(ctx context.Context, limit, offset int) ([]*model.User, int, error)
	ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error)
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	users   ActorResolver
	pages   PageConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, users ActorResolver, pages PageConfig) *UserHandler {
	return &UserHandler{
		service: service,
		users:   users,
		pages:   pages,
	}
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// List はユーザー一覧をページネーション付きで返す。
// 購読対象の記者を探すために使われる。
// GET /api/users?page=1&page_size=10
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveActor(w, r, h.users); !ok {
		return
	}

	page, pageSize := parsePageParams(r, h.pages)
	list, total, err := h.service.List(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(list))
	for _, u := range list {
		responses = append(responses, toUserResponse(u))
	}

	writePageResponse(w, total, page, pageSize, responses)
}

// ChangeRole は指定ユーザーの役割を変更する。編集者のみ。
// PUT /api/users/{id}/role
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	updated, err := h.service.ChangeRole(r.Context(), actor, chi.URLParam(r, "id"), model.Role(req.Role))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(updated))
}

// Withdraw は自分自身の退会を処理する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), actor.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
