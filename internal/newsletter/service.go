// Package newsletter はニュースレターのドメインロジックを提供する。
//
// ニュースレターは記事と異なり承認ゲートを持たない。作成・編集・削除は
// 所有する記者（編集者は任意）に限られ、閲覧は所有者・購読読者・編集者に
// 限られる。
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// Sanitizer は本文のサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// SubscriptionChecker は読者→記者の購読確認インターフェース。
// repository.SubscriptionRepositoryの部分集合として定義する。
type SubscriptionChecker interface {
	IsSubscribedToJournalist(ctx context.Context, readerID, journalistID string) (bool, error)
}

// Service はニュースレター管理のサービス層。
type Service struct {
	newsletterRepo repository.NewsletterRepository
	subs           SubscriptionChecker
	sanitizer      Sanitizer
}

// NewService はServiceを生成する。
func NewService(
	newsletterRepo repository.NewsletterRepository,
	subs SubscriptionChecker,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		newsletterRepo: newsletterRepo,
		subs:           subs,
		sanitizer:      sanitizer,
	}
}

// Input はニュースレターの作成・編集の入力。
type Input struct {
	Title   string
	Content string
}

// Create は記者として新しいニュースレターを作成する。承認は不要。
func (s *Service) Create(ctx context.Context, actor *model.User, input Input) (*model.Newsletter, error) {
	if actor.Role != model.RoleJournalist {
		return nil, model.NewPermissionDeniedError("ニュースレターを作成できるのは記者だけです")
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if content == "" {
		return nil, model.NewValidationError("本文は必須です")
	}

	newsletter := &model.Newsletter{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    s.sanitizer.Sanitize(content),
		Journalist: actor,
		CreatedAt:  time.Now(),
	}

	if err := s.newsletterRepo.Create(ctx, newsletter); err != nil {
		return nil, fmt.Errorf("ニュースレターの作成に失敗しました: %w", err)
	}

	slog.Info("newsletter created",
		slog.String("newsletter_id", newsletter.ID),
		slog.String("journalist_id", actor.ID),
	)
	return newsletter, nil
}

// Get はニュースレターを取得する。
// 閲覧できるのは所有する記者、その記者を購読している読者、編集者のみ。
func (s *Service) Get(ctx context.Context, actor *model.User, newsletterID string) (*model.Newsletter, error) {
	newsletter, err := s.newsletterRepo.FindByID(ctx, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}
	if newsletter == nil {
		return nil, model.NewNewsletterNotFoundError(newsletterID)
	}

	switch actor.Role {
	case model.RoleEditor:
		return newsletter, nil
	case model.RoleJournalist:
		if newsletter.JournalistID() == actor.ID {
			return newsletter, nil
		}
	case model.RoleReader:
		subscribed, err := s.subs.IsSubscribedToJournalist(ctx, actor.ID, newsletter.JournalistID())
		if err != nil {
			return nil, fmt.Errorf("購読の確認に失敗しました: %w", err)
		}
		if subscribed {
			return newsletter, nil
		}
	}

	return nil, model.NewPermissionDeniedError("このニュースレターは購読者にのみ公開されています")
}

// Edit はニュースレターのタイトル・本文を更新する。
// 記者は自分のニュースレターのみ、編集者は任意に編集できる。
func (s *Service) Edit(ctx context.Context, actor *model.User, newsletterID string, input Input) (*model.Newsletter, error) {
	newsletter, err := s.authorizeMutation(ctx, actor, newsletterID, "編集")
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

	newsletter.Title = title
	newsletter.Content = s.sanitizer.Sanitize(content)

	if err := s.newsletterRepo.Update(ctx, newsletter); err != nil {
		return nil, fmt.Errorf("ニュースレターの更新に失敗しました: %w", err)
	}
	return newsletter, nil
}

// Delete はニュースレターを物理削除し、確認メッセージ用にタイトルを返す。
func (s *Service) Delete(ctx context.Context, actor *model.User, newsletterID string) (string, error) {
	newsletter, err := s.authorizeMutation(ctx, actor, newsletterID, "削除")
	if err != nil {
		return "", err
	}

	if err := s.newsletterRepo.DeleteByID(ctx, newsletterID); err != nil {
		return "", fmt.Errorf("ニュースレターの削除に失敗しました: %w", err)
	}

	slog.Info("newsletter deleted",
		slog.String("newsletter_id", newsletterID),
		slog.String("actor_id", actor.ID),
	)
	return newsletter.Title, nil
}

// List は役割に応じたニュースレター一覧を返す。
// 記者は自分のもの、読者は購読している記者のもの、編集者はすべて。
func (s *Service) List(ctx context.Context, actor *model.User) ([]*model.Newsletter, error) {
	var (
		newsletters []*model.Newsletter
		err         error
	)
	switch actor.Role {
	case model.RoleJournalist:
		newsletters, err = s.newsletterRepo.ListByJournalist(ctx, actor.ID)
	case model.RoleReader:
		newsletters, err = s.newsletterRepo.ListForReader(ctx, actor.ID)
	case model.RoleEditor:
		newsletters, err = s.newsletterRepo.ListAll(ctx)
	default:
		return nil, model.NewPermissionDeniedError("ニュースレターを閲覧する権限がありません")
	}
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	return newsletters, nil
}

// authorizeMutation は編集・削除の共通認可を行い、対象ニュースレターを返す。
func (s *Service) authorizeMutation(ctx context.Context, actor *model.User, newsletterID, operation string) (*model.Newsletter, error) {
	switch actor.Role {
	case model.RoleJournalist, model.RoleEditor:
	default:
		return nil, model.NewPermissionDeniedError(fmt.Sprintf("ニュースレターを%sする権限がありません", operation))
	}

	newsletter, err := s.newsletterRepo.FindByID(ctx, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}
	if newsletter == nil {
		return nil, model.NewNewsletterNotFoundError(newsletterID)
	}

	if actor.Role == model.RoleJournalist && newsletter.JournalistID() != actor.ID {
		return nil, model.NewPermissionDeniedError(fmt.Sprintf("%sできるのは自分のニュースレターだけです", operation))
	}

	return newsletter, nil
}
