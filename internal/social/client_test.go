package social

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- テスト ---

// TestClient_Post は投稿リクエストの形式を検証する。
func TestClient_Post(t *testing.T) {
	var (
		gotAuth        string
		gotContentType string
		gotBody        postRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := NewClient(server.Client(), "test-token", testLogger())
	c.endpoint = server.URL

	if err := c.Post(context.Background(), "📰 New Article: Breaking News"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("want Bearer test-token, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("want application/json, got %q", gotContentType)
	}
	if gotBody.Text != "📰 New Article: Breaking News" {
		t.Errorf("want posted text, got %q", gotBody.Text)
	}
}

// TestClient_Post_NonCreatedStatus は201以外のステータスがエラーになることを検証する。
func TestClient_Post_NonCreatedStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusForbidden, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(server.Client(), "test-token", testLogger())
		c.endpoint = server.URL

		if err := c.Post(context.Background(), "text"); err == nil {
			t.Errorf("status %d: want error", status)
		}
		server.Close()
	}
}

// TestClient_Post_ConnectionFailure は接続失敗時のエラー伝播を検証する。
func TestClient_Post_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 即座に閉じて接続エラーを起こす

	c := NewClient(http.DefaultClient, "test-token", testLogger())
	c.endpoint = server.URL

	if err := c.Post(context.Background(), "text"); err == nil {
		t.Error("want error on connection failure")
	}
}
