// Package model はドメインモデルを定義する。
package model

import "time"

// Publisher は編集者と記者が所属する発行元組織を表す。
// 発行元自体は承認状態を持たない。
type Publisher struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
