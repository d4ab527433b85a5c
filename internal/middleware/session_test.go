package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// --- モック ---

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFn(ctx, id)
}

// --- テスト ---

// TestSessionMiddleware_ValidSession は有効なセッションでユーザーIDが
// コンテキストへ注入されることを検証する。
func TestSessionMiddleware_ValidSession(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id != "session-abc" {
				t.Errorf("want session-abc, got %s", id)
			}
			return &model.Session{
				ID:        id,
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}

	var gotUserID string
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user ID not in context: %v", err)
		}
		gotUserID = userID
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("want 200, got %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("want user-1, got %s", gotUserID)
	}
}

// TestSessionMiddleware_Unauthorized は未認証リクエストの拒否を検証する。
func TestSessionMiddleware_Unauthorized(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		finder *mockSessionFinder
	}{
		{
			name:   "no cookie",
			cookie: nil,
			finder: &mockSessionFinder{},
		},
		{
			name:   "empty cookie value",
			cookie: &http.Cookie{Name: "session_id", Value: ""},
			finder: &mockSessionFinder{},
		},
		{
			name:   "session not found or expired",
			cookie: &http.Cookie{Name: "session_id", Value: "stale"},
			finder: &mockSessionFinder{
				findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
					return nil, nil
				},
			},
		},
		{
			name:   "finder error",
			cookie: &http.Cookie{Name: "session_id", Value: "s"},
			finder: &mockSessionFinder{
				findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
					return nil, errors.New("db error")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewSessionMiddleware(tt.finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("want 401, got %d", rec.Code)
			}
			if called {
				t.Error("next handler should not be called")
			}
		})
	}
}

// TestUserIDFromContext はコンテキストからのユーザーID取得を検証する。
func TestUserIDFromContext(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-1")
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("want user ID, got error: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("want user-1, got %s", userID)
	}

	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("want error for context without user ID")
	}
}
