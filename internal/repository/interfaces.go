// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/newsdesk/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateRole はユーザーの役割を更新し、updated_atを進める。
	// ユーザーが存在しない場合はエラーを返す。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// List はユーザー一覧をcreated_at昇順でページ取得し、総件数も返す。
	List(ctx context.Context, limit, offset int) ([]*model.User, int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 記事・ニュースレター・購読・セッションはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// GroupRepository は役割グループと所属関係の永続化インターフェース。
type GroupRepository interface {
	// GetOrCreateByName は指定名のグループを取得し、存在しなければ作成する。冪等。
	GetOrCreateByName(ctx context.Context, name string) (*model.Group, error)

	// ReplaceUserGroups はユーザーの所属グループを指定の1グループだけに置き換える。
	// 既存の所属はすべて削除される。
	ReplaceUserGroups(ctx context.Context, userID, groupID string) error

	// ListNamesByUserID はユーザーが所属するグループ名の一覧を返す。
	ListNamesByUserID(ctx context.Context, userID string) ([]string, error)

	// SetPermissions はグループの権限コード一覧を置き換える。冪等。
	SetPermissions(ctx context.Context, groupID string, permissions []string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// PublisherRepository は発行元データの永続化インターフェース。
type PublisherRepository interface {
	// FindByID は指定IDの発行元を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Publisher, error)

	// GetOrCreateByName は指定名の発行元を取得し、存在しなければ作成する。冪等。
	GetOrCreateByName(ctx context.Context, name string) (*model.Publisher, error)

	// List は発行元一覧を名前昇順で返す。
	List(ctx context.Context) ([]*model.Publisher, error)

	// AddEditor は発行元に編集者を所属させる。重複追加は無視される。
	AddEditor(ctx context.Context, publisherID, userID string) error

	// AddJournalist は発行元に記者を所属させる。重複追加は無視される。
	AddJournalist(ctx context.Context, publisherID, userID string) error
}

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を記者・発行元情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// Create は記事を作成する。
	Create(ctx context.Context, article *model.Article) error

	// Update は記事のタイトル・本文・発行元を更新し、updated_atを進める。
	Update(ctx context.Context, article *model.Article) error

	// DeleteByID は指定IDの記事を物理削除する。
	// 記事が存在しない場合はエラーを返す。
	DeleteByID(ctx context.Context, id string) error

	// MarkApproved はis_approved=falseの記事だけを条件付きで承認済みに更新する。
	// 実際に更新された場合はtrueを返す。すでに承認済みの場合はfalseを返す。
	MarkApproved(ctx context.Context, id string) (bool, error)

	// ListApproved は承認済み記事をcreated_at降順でページ取得し、総件数も返す。
	ListApproved(ctx context.Context, limit, offset int) ([]*model.Article, int, error)

	// ListPending は未承認記事をcreated_at降順で返す。
	ListPending(ctx context.Context) ([]*model.Article, error)

	// ListByJournalist は指定記者の記事をcreated_at降順で返す。承認状態は問わない。
	ListByJournalist(ctx context.Context, journalistID string) ([]*model.Article, error)
}

// NewsletterRepository はニュースレターデータの永続化インターフェース。
type NewsletterRepository interface {
	// FindByID は指定IDのニュースレターを記者情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Newsletter, error)

	// Create はニュースレターを作成する。
	Create(ctx context.Context, newsletter *model.Newsletter) error

	// Update はニュースレターのタイトル・本文を更新する。
	Update(ctx context.Context, newsletter *model.Newsletter) error

	// DeleteByID は指定IDのニュースレターを物理削除する。
	// 存在しない場合はエラーを返す。
	DeleteByID(ctx context.Context, id string) error

	// ListByJournalist は指定記者のニュースレターをcreated_at降順で返す。
	ListByJournalist(ctx context.Context, journalistID string) ([]*model.Newsletter, error)

	// ListForReader は読者が購読している記者のニュースレターをcreated_at降順で返す。
	ListForReader(ctx context.Context, readerID string) ([]*model.Newsletter, error)

	// ListAll は全ニュースレターをcreated_at降順で返す。編集者ビュー用。
	ListAll(ctx context.Context) ([]*model.Newsletter, error)
}

// SubscriptionRepository は購読エッジの永続化インターフェース。
// 購読は通知ファンアウトの計算とニュースレター閲覧判定にのみ使われる。
type SubscriptionRepository interface {
	// SubscribeJournalist は読者→記者の購読を作成する。
	// すでに存在する場合は何もしない。新規作成でtrueを返す。
	SubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error)

	// UnsubscribeJournalist は読者→記者の購読を解除する。
	// 購読が存在した場合はtrueを返す。
	UnsubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error)

	// SubscribePublisher は読者→発行元の購読を作成する。
	// すでに存在する場合は何もしない。新規作成でtrueを返す。
	SubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error)

	// UnsubscribePublisher は読者→発行元の購読を解除する。
	// 購読が存在した場合はtrueを返す。
	UnsubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error)

	// IsSubscribedToJournalist は読者が指定記者を購読しているかを返す。
	IsSubscribedToJournalist(ctx context.Context, readerID, journalistID string) (bool, error)

	// ListJournalistIDsByReader は読者が購読している記者IDの一覧を返す。
	ListJournalistIDsByReader(ctx context.Context, readerID string) ([]string, error)

	// ListPublisherIDsByReader は読者が購読している発行元IDの一覧を返す。
	ListPublisherIDsByReader(ctx context.Context, readerID string) ([]string, error)

	// ListSubscribers は指定記者の購読者と指定発行元の購読者の和集合を
	// READERロールのユーザーとして重複なしで返す。publisherIDは空でもよい。
	ListSubscribers(ctx context.Context, journalistID, publisherID string) ([]*model.User, error)

	// DeleteByReader は読者の全購読エッジを削除する。役割変更時のクリアに使う。
	DeleteByReader(ctx context.Context, readerID string) error
}
