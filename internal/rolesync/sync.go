// Package rolesync は役割とグループ所属の同期を提供する。
//
// ユーザーの役割が保存されるたびに、所属グループを役割名のグループ
// ちょうど1つに揃え、新しい役割で意味を持たないフィールドをリセットする。
// ユーザーレコード本体の保存に対してベストエフォートであり、同期の失敗が
// ユーザー保存を巻き戻すことはない（呼び出し側はエラーをログに留める）。
package rolesync

import (
	"context"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// GroupStore はグループ同期に必要なリポジトリ操作のインターフェース。
// repository.GroupRepositoryの部分集合として定義する。
type GroupStore interface {
	GetOrCreateByName(ctx context.Context, name string) (*model.Group, error)
	ReplaceUserGroups(ctx context.Context, userID, groupID string) error
}

// SubscriptionCleaner は読者専用の購読エッジの一括削除インターフェース。
type SubscriptionCleaner interface {
	DeleteByReader(ctx context.Context, readerID string) error
}

// Synchronizer は役割とグループ所属を同期するサービス。
type Synchronizer struct {
	groups GroupStore
	subs   SubscriptionCleaner
}

// NewSynchronizer はSynchronizerを生成する。
func NewSynchronizer(groups GroupStore, subs SubscriptionCleaner) *Synchronizer {
	return &Synchronizer{groups: groups, subs: subs}
}

// Sync はユーザーの所属グループを現在の役割に対応する1グループだけに置き換える。
//
// 事後条件: ユーザーは役割名と同名のグループにのみ所属し、他の役割グループには
// 所属しない。グループが存在しなければ遅延作成する（冪等）。
//
// 役割がJOURNALISTになった場合、読者専用の購読エッジを削除する。
// READERの記者専用コンテンツは記事・ニュースレターの外部キー所有で表現されて
// おり、読者側に保持されるフィールドが存在しないため削除対象はない。
// EDITORにはリセット対象のフィールドがない。
func (s *Synchronizer) Sync(ctx context.Context, user *model.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role: %s", user.Role)
	}

	// 新しい役割で意味を持たないフィールドのリセット
	if user.Role == model.RoleJournalist && s.subs != nil {
		if err := s.subs.DeleteByReader(ctx, user.ID); err != nil {
			return fmt.Errorf("購読エッジのクリアに失敗しました: %w", err)
		}
	}

	group, err := s.groups.GetOrCreateByName(ctx, user.Role.GroupName())
	if err != nil {
		return fmt.Errorf("役割グループの取得に失敗しました: %w", err)
	}

	if err := s.groups.ReplaceUserGroups(ctx, user.ID, group.ID); err != nil {
		return fmt.Errorf("所属グループの置き換えに失敗しました: %w", err)
	}

	return nil
}
