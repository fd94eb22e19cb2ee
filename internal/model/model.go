// Package model はAPIが扱うリソースのドメイン型を定義する。
package model

import "time"

// User はローカルに保存されたユーザーを表す。
type User struct {
	// ID はストアが採番する一意識別子。
	ID int64 `json:"id"`
	// Username はユーザー名。
	Username string `json:"username"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// AuthSub は外部IDプロバイダのsubjectクレーム。ローカル作成のユーザーではnil。
	AuthSub *string `json:"authSub,omitempty"`
	// CreatedAt は作成日時。
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt は更新日時。
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stratmap は戦略マップを表す。
type Stratmap struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Map はマップの参照文字列。
	Map string `json:"map"`
	// UserID は作成したユーザーのID。認証なしで作成された場合はnil。
	UserID    *int64    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
