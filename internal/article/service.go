// Package article は記事ライフサイクルのドメインロジックを提供する。
//
// 記事は未承認状態で作成され、編集者の承認で読者に公開されるか、却下で
// 物理削除される。承認は一度きりの単調な遷移であり、承認済み記事を未承認に
// 戻す操作は存在しない。
package article

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/notify"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// Sanitizer は本文のサニタイズインターフェース。
// security.ContentSanitizerServiceの部分集合として定義する。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Dispatcher は承認時の購読者通知インターフェース。
// notify.Dispatcherの部分集合として定義する。
type Dispatcher interface {
	Dispatch(ctx context.Context, article *model.Article) (notify.Result, error)
}

// Metrics は記事操作の計測インターフェース。
type Metrics interface {
	RecordArticleCreated()
	RecordArticleApproved()
	RecordArticleRejected()
}

// Service は記事ワークフローのサービス層。
// 役割と所有権に基づく認可と、承認状態機械を実装する。
type Service struct {
	articleRepo   repository.ArticleRepository
	publisherRepo repository.PublisherRepository
	sanitizer     Sanitizer
	dispatcher    Dispatcher
	metrics       Metrics // nil可
}

// NewService はServiceを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	publisherRepo repository.PublisherRepository,
	sanitizer Sanitizer,
	dispatcher Dispatcher,
	metrics Metrics,
) *Service {
	return &Service{
		articleRepo:   articleRepo,
		publisherRepo: publisherRepo,
		sanitizer:     sanitizer,
		dispatcher:    dispatcher,
		metrics:       metrics,
	}
}

// Input は記事の作成・編集の入力。
type Input struct {
	Title       string
	Content     string
	PublisherID string // 空の場合は発行元なし
}

// ApproveResult は承認操作の結果を表す。
type ApproveResult struct {
	Article *model.Article
	// AlreadyApproved は記事がすでに承認済みで、状態変更も通知も
	// 行われなかったことを示す。
	AlreadyApproved bool
	// Notified / FailedSends は新規承認時の通知結果。
	Notified    int
	FailedSends int
}

// Create は記者として新しい記事を未承認状態で作成する。
// 読者と編集者は記事を作成できない（編集者は執筆者ではない）。
func (s *Service) Create(ctx context.Context, actor *model.User, input Input) (*model.Article, error) {
	if actor.Role != model.RoleJournalist {
		return nil, model.NewPermissionDeniedError("記事を作成できるのは記者だけです")
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if content == "" {
		return nil, model.NewValidationError("本文は必須です")
	}

	publisher, err := s.resolvePublisher(ctx, input.PublisherID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	article := &model.Article{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    s.sanitizer.Sanitize(content),
		IsApproved: false,
		Journalist: actor,
		Publisher:  publisher,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordArticleCreated()
	}
	slog.Info("article submitted for approval",
		slog.String("article_id", article.ID),
		slog.String("journalist_id", actor.ID),
	)

	return article, nil
}

// Get は記事を取得する。閲覧可否は役割と状態で決まる:
// 読者は承認済みのみ、記者は自分の記事（状態不問）と他者の承認済み記事、
// 編集者はすべての記事を閲覧できる。
func (s *Service) Get(ctx context.Context, actor *model.User, articleID string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	if article.IsApproved || actor.Role == model.RoleEditor {
		return article, nil
	}
	if actor.Role == model.RoleJournalist && article.JournalistID() == actor.ID {
		return article, nil
	}

	return nil, model.NewPermissionDeniedError("この記事はまだ公開されていません")
}

// Edit は記事のタイトル・本文・発行元を更新する。
// 記者は自分の記事のみ、編集者は任意の記事を編集できる。
func (s *Service) Edit(ctx context.Context, actor *model.User, articleID string, input Input) (*model.Article, error) {
	article, err := s.authorizeMutation(ctx, actor, articleID, "編集")
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if content == "" {
		return nil, model.NewValidationError("本文は必須です")
	}

	publisher, err := s.resolvePublisher(ctx, input.PublisherID)
	if err != nil {
		return nil, err
	}

	article.Title = title
	article.Content = s.sanitizer.Sanitize(content)
	article.Publisher = publisher
	article.UpdatedAt = time.Now()

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	return article, nil
}

// Delete は記事を物理削除し、確認メッセージ用にタイトルを返す。
// 記者は自分の記事のみ、編集者は任意の記事を削除できる。
func (s *Service) Delete(ctx context.Context, actor *model.User, articleID string) (string, error) {
	article, err := s.authorizeMutation(ctx, actor, articleID, "削除")
	if err != nil {
		return "", err
	}

	if err := s.articleRepo.DeleteByID(ctx, articleID); err != nil {
		return "", fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	slog.Info("article deleted",
		slog.String("article_id", articleID),
		slog.String("actor_id", actor.ID),
	)
	return article.Title, nil
}

// Approve は記事を承認し、購読者への通知を試行する。
//
// 承認できるのは編集者のみ。承認は is_approved = FALSE の行だけを更新する
// 条件付きUPDATEで永続化され、同時承認が競合しても通知は一度しか発火しない。
// すでに承認済みの記事への呼び出しは状態を変えず、AlreadyApprovedを報告する
// だけで通知の再送も行わない。通知経路の失敗は承認を巻き戻さない。
func (s *Service) Approve(ctx context.Context, actor *model.User, articleID string) (*ApproveResult, error) {
	if actor.Role != model.RoleEditor {
		return nil, model.NewPermissionDeniedError("記事を承認できるのは編集者だけです")
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	approvedNow, err := s.articleRepo.MarkApproved(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の承認に失敗しました: %w", err)
	}
	article.IsApproved = true

	if !approvedNow {
		return &ApproveResult{Article: article, AlreadyApproved: true}, nil
	}

	if s.metrics != nil {
		s.metrics.RecordArticleApproved()
	}
	slog.Info("article approved",
		slog.String("article_id", articleID),
		slog.String("editor_id", actor.ID),
	)

	result := &ApproveResult{Article: article}
	dispatchResult, err := s.dispatcher.Dispatch(ctx, article)
	if err != nil {
		// 通知の失敗は承認の成功を覆さない
		slog.Warn("notification dispatch failed after approval",
			slog.String("article_id", articleID),
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	result.Notified = dispatchResult.Notified
	result.FailedSends = dispatchResult.FailedSends
	return result, nil
}

// Reject は記事を却下し物理削除する。削除したタイトルを返す。
// 却下できるのは編集者のみ。監査用の記録は残さない。
func (s *Service) Reject(ctx context.Context, actor *model.User, articleID string) (string, error) {
	if actor.Role != model.RoleEditor {
		return "", model.NewPermissionDeniedError("記事を却下できるのは編集者だけです")
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return "", fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return "", model.NewArticleNotFoundError(articleID)
	}

	if err := s.articleRepo.DeleteByID(ctx, articleID); err != nil {
		return "", fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordArticleRejected()
	}
	slog.Info("article rejected",
		slog.String("article_id", articleID),
		slog.String("editor_id", actor.ID),
	)
	return article.Title, nil
}

// ListApproved は承認済み記事をページ取得し、総件数も返す。
// 認証済みであれば役割を問わず閲覧できる。
func (s *Service) ListApproved(ctx context.Context, limit, offset int) ([]*model.Article, int, error) {
	articles, total, err := s.articleRepo.ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("承認済み記事一覧の取得に失敗しました: %w", err)
	}
	return articles, total, nil
}

// ListPending は未承認記事の一覧を返す。編集者のみ。
func (s *Service) ListPending(ctx context.Context, actor *model.User) ([]*model.Article, error) {
	if actor.Role != model.RoleEditor {
		return nil, model.NewPermissionDeniedError("承認待ち記事を閲覧できるのは編集者だけです")
	}
	articles, err := s.articleRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("承認待ち記事一覧の取得に失敗しました: %w", err)
	}
	return articles, nil
}

// ListMine は自分の記事の一覧を承認状態を問わず返す。記者のみ。
func (s *Service) ListMine(ctx context.Context, actor *model.User) ([]*model.Article, error) {
	if actor.Role != model.RoleJournalist {
		return nil, model.NewPermissionDeniedError("自分の記事一覧を閲覧できるのは記者だけです")
	}
	articles, err := s.articleRepo.ListByJournalist(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return articles, nil
}

// authorizeMutation は編集・削除の共通認可を行い、対象記事を返す。
// 読者は常に拒否。記者は所有記事のみ。編集者は所有権チェックを免除される。
func (s *Service) authorizeMutation(ctx context.Context, actor *model.User, articleID, operation string) (*model.Article, error) {
	switch actor.Role {
	case model.RoleJournalist, model.RoleEditor:
	default:
		return nil, model.NewPermissionDeniedError(fmt.Sprintf("記事を%sする権限がありません", operation))
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	if actor.Role == model.RoleJournalist && article.JournalistID() != actor.ID {
		return nil, model.NewPermissionDeniedError(fmt.Sprintf("%sできるのは自分の記事だけです", operation))
	}

	return article, nil
}

// resolvePublisher はpublisherIDが指定されている場合に発行元を解決する。
// 空文字列の場合はnilを返す。
func (s *Service) resolvePublisher(ctx context.Context, publisherID string) (*model.Publisher, error) {
	if publisherID == "" {
		return nil, nil
	}
	publisher, err := s.publisherRepo.FindByID(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("発行元の取得に失敗しました: %w", err)
	}
	if publisher == nil {
		return nil, model.NewPublisherNotFoundError(publisherID)
	}
	return publisher, nil
}
