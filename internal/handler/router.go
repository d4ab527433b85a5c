package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 認証済みユーザーの解決
	ActorResolver ActorResolver

	// 記事
	ArticleService ArticleServiceInterface

	// ニュースレター
	NewsletterService NewsletterServiceInterface

	// 購読
	SubscriptionService SubscriptionServiceInterface

	// 出版社
	PublisherLister PublisherListerInterface

	// ユーザー
	UserService UserServiceInterface

	// ページネーション
	Pages PageConfig
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → SecurityHeaders → CORSMiddleware → CSRFMiddleware
//	→ SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	articleHandler := NewArticleHandler(deps.ArticleService, deps.ActorResolver, deps.Pages)
	newsletterHandler := NewNewsletterHandler(deps.NewsletterService, deps.ActorResolver)
	subHandler := NewSubscriptionHandler(deps.SubscriptionService, deps.ActorResolver)
	publisherHandler := NewPublisherHandler(deps.PublisherLister, deps.ActorResolver)
	userHandler := NewUserHandler(deps.UserService, deps.ActorResolver, deps.Pages)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 記事管理
		r.Route("/api/articles", func(r chi.Router) {
			// GET /api/articles - 承認済み記事一覧（ページネーション付き）
			r.Get("/", articleHandler.ListApproved)

			// POST /api/articles - 記事投稿（投稿専用レート制限を追加）
			r.With(deps.RateLimiter.ArticleSubmissionMiddleware()).Post("/", articleHandler.Create)

			r.Get("/pending", articleHandler.ListPending)
			r.Get("/mine", articleHandler.ListMine)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", articleHandler.Get)
				r.Put("/", articleHandler.Update)
				r.Delete("/", articleHandler.Delete)

				// 編集者による承認ワークフロー
				r.Post("/approve", articleHandler.Approve)
				r.Post("/reject", articleHandler.Reject)
			})
		})

		// ニュースレター管理
		r.Route("/api/newsletters", func(r chi.Router) {
			r.Get("/", newsletterHandler.List)
			r.Post("/", newsletterHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", newsletterHandler.Get)
				r.Put("/", newsletterHandler.Update)
				r.Delete("/", newsletterHandler.Delete)
			})
		})

		// 購読管理
		r.Route("/api/subscriptions", func(r chi.Router) {
			r.Get("/", subHandler.List)

			r.Route("/journalists/{id}", func(r chi.Router) {
				r.Put("/", subHandler.SubscribeJournalist)
				r.Delete("/", subHandler.UnsubscribeJournalist)
			})

			r.Route("/publishers/{id}", func(r chi.Router) {
				r.Put("/", subHandler.SubscribePublisher)
				r.Delete("/", subHandler.UnsubscribePublisher)
			})
		})

		// 出版社一覧
		r.Get("/api/publishers", publisherHandler.List)

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Delete("/me", userHandler.Withdraw)

			// 編集者による役割変更
			r.Put("/{id}/role", userHandler.ChangeRole)
		})
	})

	return r
}

// healthHandler はヘルスチェックエンドポイント。
// GET /health
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
