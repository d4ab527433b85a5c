package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/newsdesk")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("BASE_URL", "http://localhost:8080")
}

// --- テスト ---

// TestLoad_RequiredMissing は必須環境変数の欠落を検証する。
func TestLoad_RequiredMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("want error when required env vars are missing")
	}
	for _, name := range []string{"DATABASE_URL", "SESSION_SECRET", "BASE_URL"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

// TestLoad_Defaults はオプション項目のデフォルト値を検証する。
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("want SessionMaxAge 86400, got %d", cfg.SessionMaxAge)
	}
	if cfg.MailFrom != "no-reply@newsapp.local" {
		t.Errorf("unexpected MailFrom: %s", cfg.MailFrom)
	}
	if cfg.SocialPostTimeout != 5*time.Second {
		t.Errorf("want 5s social timeout, got %v", cfg.SocialPostTimeout)
	}
	if cfg.RateLimitGeneral != 120 || cfg.RateLimitArticleSubmit != 10 {
		t.Errorf("unexpected rate limits: %d, %d", cfg.RateLimitGeneral, cfg.RateLimitArticleSubmit)
	}
	if cfg.PageSizeDefault != 10 || cfg.PageSizeMax != 100 {
		t.Errorf("unexpected page sizes: %d, %d", cfg.PageSizeDefault, cfg.PageSizeMax)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("want port 8080, got %s", cfg.ServerPort)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false for http base URL")
	}
}

// TestLoad_Overrides は環境変数による上書きを検証する。
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_URL", "https://news.example.com")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("SMTP_ADDR", "localhost:1025")
	t.Setenv("TWITTER_BEARER_TOKEN", "token")
	t.Setenv("SOCIAL_POST_TIMEOUT", "10s")
	t.Setenv("PAGE_SIZE_DEFAULT", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.SessionMaxAge != 3600 {
		t.Errorf("want SessionMaxAge 3600, got %d", cfg.SessionMaxAge)
	}
	if cfg.SMTPAddr != "localhost:1025" {
		t.Errorf("unexpected SMTPAddr: %s", cfg.SMTPAddr)
	}
	if cfg.SocialPostTimeout != 10*time.Second {
		t.Errorf("want 10s, got %v", cfg.SocialPostTimeout)
	}
	if cfg.PageSizeDefault != 20 {
		t.Errorf("want 20, got %d", cfg.PageSizeDefault)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true for https base URL")
	}
}

// TestLoad_InvalidValuesFallBack は不正な値がデフォルトへ戻ることを検証する。
func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("SOCIAL_POST_TIMEOUT", "fast")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("want default 86400, got %d", cfg.SessionMaxAge)
	}
	if cfg.SocialPostTimeout != 5*time.Second {
		t.Errorf("want default 5s, got %v", cfg.SocialPostTimeout)
	}
}
