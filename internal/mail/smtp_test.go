package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

// --- テスト ---

// TestSMTPMailer_Send は送信関数への受け渡しを検証する。
func TestSMTPMailer_Send(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	m := NewSMTPMailer("localhost:1025", "news@example.com")
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	err := m.Send(context.Background(), "alice@example.com", "New Article: Breaking News", "Hello alice,")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotAddr != "localhost:1025" {
		t.Errorf("want addr localhost:1025, got %s", gotAddr)
	}
	if gotFrom != "news@example.com" {
		t.Errorf("want from news@example.com, got %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Errorf("want to [alice@example.com], got %v", gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"From: news@example.com\r\n",
		"To: alice@example.com\r\n",
		"Subject: New Article: Breaking News\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"\r\n\r\nHello alice,",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

// TestSMTPMailer_Send_Errors は入力不備と送信失敗時のエラーを検証する。
func TestSMTPMailer_Send_Errors(t *testing.T) {
	t.Run("no server configured", func(t *testing.T) {
		m := NewSMTPMailer("", "news@example.com")
		if err := m.Send(context.Background(), "alice@example.com", "s", "b"); err == nil {
			t.Error("want error when addr is empty")
		}
	})

	t.Run("empty recipient", func(t *testing.T) {
		m := NewSMTPMailer("localhost:1025", "news@example.com")
		if err := m.Send(context.Background(), "", "s", "b"); err == nil {
			t.Error("want error when recipient is empty")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		m := NewSMTPMailer("localhost:1025", "news@example.com")
		m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			t.Error("send should not be called with canceled context")
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := m.Send(ctx, "alice@example.com", "s", "b"); !errors.Is(err, context.Canceled) {
			t.Errorf("want context.Canceled, got %v", err)
		}
	})

	t.Run("smtp failure wrapped", func(t *testing.T) {
		sendErr := errors.New("connection refused")
		m := NewSMTPMailer("localhost:1025", "news@example.com")
		m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			return sendErr
		}
		err := m.Send(context.Background(), "alice@example.com", "s", "b")
		if !errors.Is(err, sendErr) {
			t.Errorf("want wrapped send error, got %v", err)
		}
	})
}
