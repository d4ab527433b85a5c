// Package subscription は読者による記者・出版社の購読管理を提供する。
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// UserFinder は購読対象ユーザーの検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// PublisherFinder は購読対象出版社の検索インターフェース。
// repository.PublisherRepositoryの部分集合として定義する。
type PublisherFinder interface {
	FindByID(ctx context.Context, id string) (*model.Publisher, error)
}

// Service は購読管理のサービス層。
type Service struct {
	subscriptionRepo repository.SubscriptionRepository
	users            UserFinder
	publishers       PublisherFinder
}

// NewService はServiceを生成する。
func NewService(
	subscriptionRepo repository.SubscriptionRepository,
	users UserFinder,
	publishers PublisherFinder,
) *Service {
	return &Service{
		subscriptionRepo: subscriptionRepo,
		users:            users,
		publishers:       publishers,
	}
}

// Subscriptions は読者が購読中の記者・出版社のID一覧。
type Subscriptions struct {
	JournalistIDs []string
	PublisherIDs  []string
}

// SubscribeJournalist は読者として記者を購読する。
// 対象が記者ロールでなければバリデーションエラー、既に購読済みなら重複エラーを返す。
func (s *Service) SubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error {
	if actor.Role != model.RoleReader {
		return model.NewPermissionDeniedError("購読できるのは読者だけです")
	}

	journalist, err := s.users.FindByID(ctx, journalistID)
	if err != nil {
		return fmt.Errorf("記者の取得に失敗しました: %w", err)
	}
	if journalist == nil {
		return model.NewUserNotFoundError(journalistID)
	}
	if journalist.Role != model.RoleJournalist {
		return model.NewValidationError("購読対象は記者である必要があります")
	}

	created, err := s.subscriptionRepo.SubscribeJournalist(ctx, actor.ID, journalistID)
	if err != nil {
		return fmt.Errorf("記者の購読に失敗しました: %w", err)
	}
	if !created {
		return model.NewDuplicateSubscriptionError()
	}

	slog.Info("journalist subscribed",
		slog.String("reader_id", actor.ID),
		slog.String("journalist_id", journalistID),
	)
	return nil
}

// UnsubscribeJournalist は記者の購読を解除する。
func (s *Service) UnsubscribeJournalist(ctx context.Context, actor *model.User, journalistID string) error {
	if actor.Role != model.RoleReader {
		return model.NewPermissionDeniedError("購読を解除できるのは読者だけです")
	}

	removed, err := s.subscriptionRepo.UnsubscribeJournalist(ctx, actor.ID, journalistID)
	if err != nil {
		return fmt.Errorf("記者の購読解除に失敗しました: %w", err)
	}
	if !removed {
		return model.NewSubscriptionNotFoundError()
	}
	return nil
}

// SubscribePublisher は読者として出版社を購読する。
func (s *Service) SubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error {
	if actor.Role != model.RoleReader {
		return model.NewPermissionDeniedError("購読できるのは読者だけです")
	}

	publisher, err := s.publishers.FindByID(ctx, publisherID)
	if err != nil {
		return fmt.Errorf("出版社の取得に失敗しました: %w", err)
	}
	if publisher == nil {
		return model.NewPublisherNotFoundError(publisherID)
	}

	created, err := s.subscriptionRepo.SubscribePublisher(ctx, actor.ID, publisherID)
	if err != nil {
		return fmt.Errorf("出版社の購読に失敗しました: %w", err)
	}
	if !created {
		return model.NewDuplicateSubscriptionError()
	}

	slog.Info("publisher subscribed",
		slog.String("reader_id", actor.ID),
		slog.String("publisher_id", publisherID),
	)
	return nil
}

// UnsubscribePublisher は出版社の購読を解除する。
func (s *Service) UnsubscribePublisher(ctx context.Context, actor *model.User, publisherID string) error {
	if actor.Role != model.RoleReader {
		return model.NewPermissionDeniedError("購読を解除できるのは読者だけです")
	}

	removed, err := s.subscriptionRepo.UnsubscribePublisher(ctx, actor.ID, publisherID)
	if err != nil {
		return fmt.Errorf("出版社の購読解除に失敗しました: %w", err)
	}
	if !removed {
		return model.NewSubscriptionNotFoundError()
	}
	return nil
}

// List は読者自身の購読一覧を返す。
func (s *Service) List(ctx context.Context, actor *model.User) (*Subscriptions, error) {
	if actor.Role != model.RoleReader {
		return nil, model.NewPermissionDeniedError("購読一覧を閲覧できるのは読者だけです")
	}

	journalistIDs, err := s.subscriptionRepo.ListJournalistIDsByReader(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("購読記者一覧の取得に失敗しました: %w", err)
	}
	publisherIDs, err := s.subscriptionRepo.ListPublisherIDsByReader(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("購読出版社一覧の取得に失敗しました: %w", err)
	}

	return &Subscriptions{
		JournalistIDs: journalistIDs,
		PublisherIDs:  publisherIDs,
	}, nil
}
