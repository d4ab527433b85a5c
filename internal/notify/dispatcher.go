// Package notify は記事承認時の購読者通知を提供する。
//
// 承認された記事について、記事の記者を購読する読者と発行元を購読する読者の
// 和集合（重複なし）を計算し、1人ずつメール通知を試行する。個々の送信失敗は
// 記録して読み飛ばし、残りの購読者への送信を続行する。ソーシャル投稿は認証
// 情報が設定されている場合にのみ1回試行され、失敗はすべて握りつぶされる。
// 通知経路の失敗が承認操作を失敗させることはない。
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsdesk/internal/model"
)

// excerptLimit はメール本文に含める記事本文の抜粋の最大文字数。
const excerptLimit = 200

// SubscriberLister は通知対象の購読者集合を計算するインターフェース。
// repository.SubscriptionRepositoryの部分集合として定義する。
type SubscriberLister interface {
	ListSubscribers(ctx context.Context, journalistID, publisherID string) ([]*model.User, error)
}

// Mailer はメール送信のインターフェース。送信はベストエフォートであり、
// 実装は配達を保証しない。
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SocialPoster は短文のソーシャル投稿インターフェース。
type SocialPoster interface {
	Post(ctx context.Context, text string) error
}

// Metrics は通知結果の計測インターフェース。
type Metrics interface {
	RecordEmailSent()
	RecordEmailFailed()
	RecordSocialPost(success bool)
}

// Result は1回のディスパッチの結果を表す。
// FailedSendsが0でない場合、呼び出し側は成功メッセージを部分成功に
// 格下げできる。
type Result struct {
	Notified    int // 送信を試行して成功した購読者数
	FailedSends int // 送信に失敗した購読者数
}

// Dispatcher は承認済み記事の購読者通知を実行する。
type Dispatcher struct {
	subscribers SubscriberLister
	mailer      Mailer
	poster      SocialPoster // nilの場合ソーシャル投稿はスキップ
	metrics     Metrics      // nil可
	logger      *slog.Logger
}

// NewDispatcher はDispatcherを生成する。
// posterがnilの場合、ソーシャル投稿は行われない。
func NewDispatcher(subscribers SubscriberLister, mailer Mailer, poster SocialPoster, metrics Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		subscribers: subscribers,
		mailer:      mailer,
		poster:      poster,
		metrics:     metrics,
		logger:      logger,
	}
}

// Dispatch は承認済み記事の通知ファンアウトを実行する。
//
// 購読者集合の計算に失敗した場合のみエラーを返す。個々のメール送信失敗は
// Resultに集計され、エラーにはならない。ソーシャル投稿の失敗はログに記録
// されるだけでResultにも影響しない。
func (d *Dispatcher) Dispatch(ctx context.Context, article *model.Article) (Result, error) {
	var result Result

	subscribers, err := d.subscribers.ListSubscribers(ctx, article.JournalistID(), article.PublisherID())
	if err != nil {
		return result, fmt.Errorf("購読者集合の計算に失敗しました: %w", err)
	}

	subject := fmt.Sprintf("New Article: %s", article.Title)
	for _, subscriber := range subscribers {
		body := emailBody(subscriber.Username, article)
		if err := d.mailer.Send(ctx, subscriber.Email, subject, body); err != nil {
			result.FailedSends++
			if d.metrics != nil {
				d.metrics.RecordEmailFailed()
			}
			d.logger.Warn("notification email failed",
				slog.String("article_id", article.ID),
				slog.String("subscriber_id", subscriber.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Notified++
		if d.metrics != nil {
			d.metrics.RecordEmailSent()
		}
	}

	d.postAnnouncement(ctx, article)

	d.logger.Info("subscriber notification dispatched",
		slog.String("article_id", article.ID),
		slog.Int("notified", result.Notified),
		slog.Int("failed", result.FailedSends),
	)

	return result, nil
}

// postAnnouncement は設定されていればソーシャル投稿を1回試行する。
// 失敗はログに記録するだけで呼び出し元へは伝播しない。
func (d *Dispatcher) postAnnouncement(ctx context.Context, article *model.Article) {
	if d.poster == nil {
		return
	}

	err := d.poster.Post(ctx, AnnouncementText(article.Title))
	if d.metrics != nil {
		d.metrics.RecordSocialPost(err == nil)
	}
	if err != nil {
		d.logger.Warn("social post failed",
			slog.String("article_id", article.ID),
			slog.String("error", err.Error()),
		)
	}
}

// emailBody は購読者向け通知メールの本文を組み立てる。
// 記事本文は先頭200文字までの抜粋を含める。
func emailBody(username string, article *model.Article) string {
	return fmt.Sprintf(`Hello %s,

A new article has been published that you might be interested in:

Title: %s
Author: %s
Content: %s...

Read the full article on NewsApp!

Best regards,
NewsApp Team
`, username, article.Title, article.Journalist.Username, excerpt(article.Content, excerptLimit))
}

// excerpt はsの先頭limit文字（ルーン単位）を返す。
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
