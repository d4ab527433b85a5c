package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// --- テスト ---

// TestCollector_Counters は各カウンターの増加を検証する。
func TestCollector_Counters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordArticleCreated()
	c.RecordArticleCreated()
	c.RecordArticleApproved()
	c.RecordArticleRejected()
	c.RecordEmailSent()
	c.RecordEmailFailed()

	if got := testutil.ToFloat64(c.articleCreated); got != 2 {
		t.Errorf("want articleCreated 2, got %v", got)
	}
	if got := testutil.ToFloat64(c.articleApproved); got != 1 {
		t.Errorf("want articleApproved 1, got %v", got)
	}
	if got := testutil.ToFloat64(c.articleRejected); got != 1 {
		t.Errorf("want articleRejected 1, got %v", got)
	}
	if got := testutil.ToFloat64(c.emailSent); got != 1 {
		t.Errorf("want emailSent 1, got %v", got)
	}
	if got := testutil.ToFloat64(c.emailFailed); got != 1 {
		t.Errorf("want emailFailed 1, got %v", got)
	}
}

// TestCollector_SocialPostLabels は結果ラベル別の集計を検証する。
func TestCollector_SocialPostLabels(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordSocialPost(true)
	c.RecordSocialPost(true)
	c.RecordSocialPost(false)

	if got := testutil.ToFloat64(c.socialPost.WithLabelValues("success")); got != 2 {
		t.Errorf("want success 2, got %v", got)
	}
	if got := testutil.ToFloat64(c.socialPost.WithLabelValues("failure")); got != 1 {
		t.Errorf("want failure 1, got %v", got)
	}
}

// TestCollector_HTTPStatus はステータスコード別の集計を検証する。
func TestCollector_HTTPStatus(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("want 200 count 2, got %v", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("404")); got != 1 {
		t.Errorf("want 404 count 1, got %v", got)
	}
}

// TestHandler はスクレイプエンドポイントの出力を検証する。
func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordArticleCreated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "newsdesk_article_created_total 1") {
		t.Errorf("scrape output missing counter:\n%s", rec.Body.String())
	}
}
