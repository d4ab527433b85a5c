package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/article"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	Create(ctx context.Context, actor *model.User, input article.Input) (*model.Article, error)
	Get(ctx context.Context, actor *model.User, articleID string) (*model.Article, error)
	Edit(ctx context.Context, actor *model.User, articleID string, input article.Input) (*model.Article, error)
	Delete(ctx context.Context, actor *model.User, articleID string) (string, error)
	Approve(ctx context.Context, actor *model.User, articleID string) (*article.ApproveResult, error)
	Reject(ctx context.Context, actor *model.User, articleID string) (string, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*model.Article, int, error)
	ListPending(ctx context.Context, actor *model.User) ([]*model.Article, error)
	ListMine(ctx context.Context, actor *model.User) ([]*model.Article, error)
}

// ActorResolver は認証済みユーザーIDからユーザーを解決するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type ActorResolver interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// PageConfig はページネーションの設定。
type PageConfig struct {
	DefaultSize int
	MaxSize     int
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
	users   ActorResolver
	pages   PageConfig
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface, users ActorResolver, pages PageConfig) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		users:   users,
		pages:   pages,
	}
}

// articleRequest は記事の作成・更新リクエストのボディ。
type articleRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublisherID string `json:"publisher_id,omitempty"`
}

// articleResponse は記事情報のAPIレスポンス。
type articleResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsApproved  bool   `json:"is_approved"`
	Journalist  string `json:"journalist"`
	PublisherID string `json:"publisher_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// pageResponse はページネーション付き一覧のAPIレスポンス。
type pageResponse struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  any `json:"results"`
}

// Create は記事の投稿を処理する。記事は未承認状態で作成される。
// POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	created, err := h.service.Create(r.Context(), actor, article.Input{
		Title:       req.Title,
		Content:     req.Content,
		PublisherID: req.PublisherID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toArticleResponse(created))
}

// Get は記事詳細を取得する。
// GET /api/articles/:id
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponse(found))
}

// Update は記事の更新を処理する。
// PUT /api/articles/:id
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	updated, err := h.service.Edit(r.Context(), actor, chi.URLParam(r, "id"), article.Input{
		Title:       req.Title,
		Content:     req.Content,
		PublisherID: req.PublisherID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponse(updated))
}

// Delete は記事の削除を処理する。
// DELETE /api/articles/:id
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
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
		"message": "記事「" + title + "」を削除しました。",
	})
}

// Approve は記事の承認を処理し、購読者通知の結果を返す。
// POST /api/articles/:id/approve
func (h *ArticleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	result, err := h.service.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := map[string]any{
		"article":          toArticleResponse(result.Article),
		"already_approved": result.AlreadyApproved,
	}
	if result.AlreadyApproved {
		body["message"] = "この記事はすでに承認されています。"
	} else {
		body["message"] = "記事を承認しました。"
		body["notified"] = result.Notified
		body["failed_sends"] = result.FailedSends
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// Reject は記事の却下（物理削除）を処理する。
// POST /api/articles/:id/reject
func (h *ArticleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	title, err := h.service.Reject(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "記事「" + title + "」を却下しました。",
	})
}

// ListApproved は承認済み記事の一覧をページネーション付きで返す。
// GET /api/articles?page=1&page_size=10
func (h *ArticleHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveActor(w, r); !ok {
		return
	}

	page, pageSize := parsePageParams(r, h.pages)
	articles, total, err := h.service.ListApproved(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePageResponse(w, total, page, pageSize, toArticleResponses(articles))
}

// ListPending は承認待ち記事の一覧を返す。編集者のみ。
// GET /api/articles/pending
func (h *ArticleHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	articles, err := h.service.ListPending(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponses(articles))
}

// ListMine は自分の記事の一覧を返す。記者のみ。
// GET /api/articles/mine
func (h *ArticleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	articles, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponses(articles))
}

// resolveActor はリクエストコンテキストから認証済みユーザーを解決する。
// 解決できない場合はエラーレスポンスを書き込み、falseを返す。
func (h *ArticleHandler) resolveActor(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	return resolveActor(w, r, h.users)
}

// --- ヘルパー関数 ---

// resolveActor はセッションミドルウェアが注入したユーザーIDからユーザーを解決する。
func resolveActor(w http.ResponseWriter, r *http.Request, users ActorResolver) (*model.User, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return nil, false
	}

	user, err := users.FindByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to resolve actor", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, internalError())
		return nil, false
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return nil, false
	}

	return user, true
}

// parsePageParams はpage/page_sizeクエリパラメータを解釈する。
// 不正な値はデフォルトに丸め、page_sizeは上限でクランプする。
func parsePageParams(r *http.Request, pages PageConfig) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	pageSize = pages.DefaultSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > pages.MaxSize {
		pageSize = pages.MaxSize
	}
	return page, pageSize
}

// writePageResponse はページネーション付き一覧レスポンスを書き込む。
func writePageResponse(w http.ResponseWriter, count, page, pageSize int, results any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pageResponse{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	})
}

// toArticleResponse はmodel.ArticleからAPIレスポンスに変換する。
func toArticleResponse(a *model.Article) articleResponse {
	resp := articleResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		IsApproved: a.IsApproved,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	if a.Journalist != nil {
		resp.Journalist = a.Journalist.Username
	}
	resp.PublisherID = a.PublisherID()
	return resp
}

// toArticleResponses は記事スライスをAPIレスポンスに変換する。
// nilスライスでも空配列としてシリアライズされるようにする。
func toArticleResponses(articles []*model.Article) []articleResponse {
	responses := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		responses = append(responses, toArticleResponse(a))
	}
	return responses
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, internalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidRole:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden
	case model.ErrCodeArticleNotFound, model.ErrCodeNewsletterNotFound,
		model.ErrCodePublisherNotFound, model.ErrCodeUserNotFound,
		model.ErrCodeSubscriptionNotFound:
		return http.StatusNotFound
	case model.ErrCodeUsernameTaken, model.ErrCodeDuplicateSubscription:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// invalidRequestError はリクエストボディ解析失敗の共通エラーを返す。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// unauthorizedError は未認証の共通エラーを返す。
func unauthorizedError() *model.APIError {
	return &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// internalError は内部サーバーエラーの共通エラーを返す。
func internalError() *model.APIError {
	return &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
