// Package model はドメインモデルを定義する。
package model

import "time"

// Article は記者が執筆し編集者が承認するニュース記事を表す。
// is_approved=false で作成され、承認されると読者に公開される。
// 承認後に未承認へ戻す遷移は存在しない。却下は物理削除となる。
type Article struct {
	ID          string
	Title       string
	Content     string // サニタイズ済み
	IsApproved  bool
	Journalist  *User      // 所有する記者（role=JOURNALIST）
	Publisher   *Publisher // 任意の発行元（非所有参照）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JournalistID は所有記者のIDを返す。Journalist未設定の場合は空文字列。
func (a *Article) JournalistID() string {
	if a.Journalist == nil {
		return ""
	}
	return a.Journalist.ID
}

// PublisherID は発行元のIDを返す。発行元なしの場合は空文字列。
func (a *Article) PublisherID() string {
	if a.Publisher == nil {
		return ""
	}
	return a.Publisher.ID
}

// Newsletter は記者が購読者へ直接届けるニュースレターを表す。
// 記事と異なり承認ゲートを持たず、発行元とも関連しない。
type Newsletter struct {
	ID         string
	Title      string
	Content    string // サニタイズ済み
	Journalist *User
	CreatedAt  time.Time
}

// JournalistID は所有記者のIDを返す。Journalist未設定の場合は空文字列。
func (n *Newsletter) JournalistID() string {
	if n.Journalist == nil {
		return ""
	}
	return n.Journalist.ID
}
