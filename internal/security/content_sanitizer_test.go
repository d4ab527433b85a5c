package security

import (
	"strings"
	"testing"
)

// --- テスト ---

// TestContentSanitizer_Sanitize は許可リストベースのサニタイズを検証する。
func TestContentSanitizer_Sanitize(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		want       []string // 出力に含まれるべき文字列
		wantAbsent []string // 出力に含まれてはならない文字列
	}{
		{
			name:  "allowed tags pass through",
			input: "<p>hello <strong>world</strong></p><ul><li>item</li></ul>",
			want:  []string{"<p>", "<strong>world</strong>", "<li>item</li>"},
		},
		{
			name:       "script removed",
			input:      `<p>safe</p><script>alert("xss")</script>`,
			want:       []string{"<p>safe</p>"},
			wantAbsent: []string{"<script>", "alert"},
		},
		{
			name:       "iframe and style removed",
			input:      `<iframe src="https://evil.example"></iframe><style>body{}</style><p>ok</p>`,
			want:       []string{"<p>ok</p>"},
			wantAbsent: []string{"iframe", "style"},
		},
		{
			name:       "event handlers stripped",
			input:      `<p onclick="alert(1)">text</p>`,
			want:       []string{"<p>text</p>"},
			wantAbsent: []string{"onclick"},
		},
		{
			name:  "https image allowed with alt",
			input: `<img src="https://cdn.example/pic.png" alt="図">`,
			want:  []string{`src="https://cdn.example/pic.png"`, `alt="図"`},
		},
		{
			name:       "http image rejected",
			input:      `<img src="http://cdn.example/pic.png">`,
			wantAbsent: []string{"http://cdn.example"},
		},
		{
			name:       "javascript scheme rejected",
			input:      `<img src="javascript:alert(1)">`,
			wantAbsent: []string{"javascript"},
		},
		{
			name:       "relative link rejected",
			input:      `<a href="/admin">link</a>`,
			want:       []string{"link"},
			wantAbsent: []string{"href"},
		},
		{
			name:  "absolute link gets target blank and noreferrer",
			input: `<a href="https://news.example/article">read</a>`,
			want:  []string{`target="_blank"`, "noreferrer"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q: %q", w, got)
				}
			}
			for _, a := range tt.wantAbsent {
				if strings.Contains(got, a) {
					t.Errorf("output should not contain %q: %q", a, got)
				}
			}
		})
	}
}

// TestContentSanitizer_Idempotent は同一入力に対する冪等性を検証する。
func TestContentSanitizer_Idempotent(t *testing.T) {
	s := NewContentSanitizer()
	input := `<p>hello</p><script>x</script><a href="https://example.com">link</a>`

	once := s.Sanitize(input)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("sanitize is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
