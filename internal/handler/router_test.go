package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/newsletter"
	"github.com/hitoshi/newsdesk/internal/subscription"
)

// --- モック ---

type stubNewsletterService struct{}

func (stubNewsletterService) Create(ctx context.Context, actor *model.User, input newsletter.Input) (*model.Newsletter, error) {
	return nil, model.NewPermissionDeniedError("stub")
}
func (stubNewsletterService) Get(ctx context.Context, actor *model.User, newsletterID string) (*model.Newsletter, error) {
	return nil, model.NewNewsletterNotFoundError(newsletterID)
}
func (stubNewsletterService) Edit(ctx context.Context, actor *model.User, newsletterID string, input newsletter.Input) (*model.Newsletter, error) {
	return nil, model.NewNewsletterNotFoundError(newsletterID)
}
func (stubNewsletterService) Delete(ctx context.Context, actor *model.User, newsletterID string) (string, error) {
	return "", model.NewNewsletterNotFoundError(newsletterID)
}
func (stubNewsletterService) List(ctx context.Context, actor *model.User) ([]*model.Newsletter, error) {
	return nil, nil
}

type stubSubscriptionService struct{}

func (stubSubscriptionService) SubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error {
	return nil
}
func (stubSubscriptionService) UnsubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error {
	return nil
}
func (stubSubscriptionService) SubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error {
	return nil
}
func (stubSubscriptionService) UnsubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error {
	return nil
}
func (stubSubscriptionService) List(ctx context.Context, actor *model.User) (*subscription.Subscriptions, error) {
	return &subscription.Subscriptions{}, nil
}

type stubPublisherLister struct{}

func (stubPublisherLister) List(ctx context.Context) ([]*model.Publisher, error) {
	return []*model.Publisher{{ID: "publisher-1", Name: "Tech News Network"}}, nil
}

type stubUserService struct{}

func (stubUserService) List(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	return nil, 0, nil
}
func (stubUserService) ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error) {
	return &model.User{ID: userID, Role: role}, nil
}
func (stubUserService) Withdraw(ctx context.Context, userID string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	sessionFinder := &mockSessionFinderForRouter{}
	articleSvc := &mockArticleService{
		listApprovedFn: func(ctx context.Context, limit, offset int) ([]*model.Article, int, error) {
			return nil, 0, nil
		},
	}

	return NewRouter(&RouterDeps{
		SessionFinder:       sessionFinder,
		CORSAllowedOrigin:   "http://localhost:3000",
		RateLimiter:         rl,
		CSRFConfig:          middleware.CSRFConfig{},
		AuthService:         &mockAuthService{},
		AuthConfig:          testAuthConfig(),
		ActorResolver:       editorResolver(),
		ArticleService:      articleSvc,
		NewsletterService:   stubNewsletterService{},
		SubscriptionService: stubSubscriptionService{},
		PublisherLister:     stubPublisherLister{},
		UserService:         stubUserService{},
		Pages:               testPageConfig(),
	})
}

type mockSessionFinderForRouter struct{}

func (mockSessionFinderForRouter) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if id != "valid-session" {
		return nil, nil
	}
	return &model.Session{
		ID:        id,
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// --- テスト ---

// TestRouter_Health はヘルスチェックエンドポイントを検証する。
func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("want status ok, got %v", body)
	}
}

// TestRouter_AuthenticatedRoutesRequireSession は保護ルートのセッション要求を検証する。
func TestRouter_AuthenticatedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/api/articles", "/api/newsletters", "/api/subscriptions", "/api/publishers", "/api/users"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: want 401 without session, got %d", path, rec.Code)
		}
	}
}

// TestRouter_ValidSessionPassesThrough は有効セッションでの通過を検証する。
func TestRouter_ValidSessionPassesThrough(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestRouter_CSRFProtectsStateChanges はCSRFトークンなしのPOST拒否を検証する。
func TestRouter_CSRFProtectsStateChanges(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("want 403 without CSRF token, got %d", rec.Code)
	}
}

// TestRouter_CSRFTokenEndpoint はトークン配布エンドポイントを検証する。
func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["token"] == "" {
		t.Error("want non-empty csrf token")
	}
}
