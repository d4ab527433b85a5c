// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// RoleSyncer は役割保存後のグループ同期インターフェース。
// rolesync.Synchronizerの部分集合として定義する。
type RoleSyncer interface {
	Sync(ctx context.Context, user *model.User) error
}

// Service はユーザー管理のサービス層。
// ユーザー一覧の取得、役割変更、退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	roleSync    RoleSyncer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	roleSync RoleSyncer,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		roleSync:    roleSync,
	}
}

// List はユーザー一覧をページ取得し、総件数も返す。
// 閲覧は認証済みユーザーなら誰でもよい。購読対象の記者を探すために使われる。
func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, total, nil
}

// ChangeRole はユーザーの役割を変更する。変更できるのは編集者のみ。
// 役割の保存後にグループ所属と役割依存フィールドを同期する。読者から
// 記者への変更では同期の過程で購読エッジがすべて削除される。
// 同期の失敗は役割の保存を巻き戻さず、ログに記録される。
func (s *Service) ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error) {
	if actor.Role != model.RoleEditor {
		return nil, model.NewPermissionDeniedError("役割を変更できるのは編集者だけです")
	}
	if !role.Valid() {
		return nil, model.NewInvalidRoleError(string(role))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("役割の更新に失敗しました: %w", err)
	}
	user.Role = role

	if err := s.roleSync.Sync(ctx, user); err != nil {
		slog.Warn("役割変更後のグループ同期に失敗しました",
			slog.String("user_id", user.ID),
			slog.String("role", string(role)),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("役割を変更しました",
		slog.String("user_id", user.ID),
		slog.String("changed_by", actor.ID),
		slog.String("role", string(role)),
	)

	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// セッションを先に削除したうえでユーザーを削除する。
// 記事・ニュースレター・購読エッジはCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
