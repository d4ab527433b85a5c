// Package mail はSMTPによるメール送信を提供する。
// 配達は保証せず、送信の試行のみを行う。
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// sendFunc はsmtp.SendMail互換の送信関数。テスト時に差し替える。
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer はnet/smtpを使用したメーラー。
type SMTPMailer struct {
	addr string // SMTPサーバーのhost:port
	from string
	send sendFunc
}

// NewSMTPMailer はSMTPMailerを生成する。
// addrにはSMTPサーバーのhost:portを指定する。
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: addr,
		from: from,
		send: smtp.SendMail,
	}
}

// Send は1通のメールを送信する。
// ctxのキャンセルは配達の中断を保証しない（smtp.SendMailはctx非対応）。
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.addr == "" {
		return fmt.Errorf("SMTPサーバーが設定されていません")
	}
	if to == "" {
		return fmt.Errorf("宛先が空です")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, subject, body)
	if err := m.send(m.addr, nil, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("メールの送信に失敗しました: %w", err)
	}
	return nil
}

// buildMessage はRFC 5322形式の簡易メッセージを組み立てる。
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
