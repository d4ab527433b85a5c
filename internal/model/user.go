// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。役割はちょうど1つ割り当てられる。
type Role string

const (
	// RoleReader は承認済み記事の閲覧と購読ができる読者。
	RoleReader Role = "READER"
	// RoleJournalist は記事・ニュースレターを執筆できる記者。
	RoleJournalist Role = "JOURNALIST"
	// RoleEditor は記事の承認・却下ができる編集者。
	RoleEditor Role = "EDITOR"
)

// Valid は既知の役割かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleJournalist, RoleEditor:
		return true
	}
	return false
}

// GroupName は役割に対応するグループ名を返す。
// グループ名は役割と1対1で対応し、ユーザーは常に現在の役割の
// グループにのみ所属する。
func (r Role) GroupName() string {
	switch r {
	case RoleReader:
		return "Reader"
	case RoleJournalist:
		return "Journalist"
	case RoleEditor:
		return "Editor"
	}
	return ""
}

// User はサービス利用ユーザーを表す。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Group は役割に対応する権限グループを表す。
// 所属関係はロール保存時にrolesyncが同期する。
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
