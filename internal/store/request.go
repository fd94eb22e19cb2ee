package store

// UserCreateRequest はユーザー作成の入力。
type UserCreateRequest struct {
	Username string
	Email    string
}

// UserUpdateRequest はユーザー部分更新の入力。nilのフィールドは既存値を維持する。
type UserUpdateRequest struct {
	ID       int64
	Username *string
	Email    *string
}

// UserUpsertRequest は外部IDのsubjectをキーにしたユーザーのアップサート入力。
type UserUpsertRequest struct {
	Subject  string
	Email    *string
	Username *string
}

// StratmapCreateRequest は戦略マップ作成の入力。
type StratmapCreateRequest struct {
	Title       string
	Description string
	Map         string
	UserID      *int64
}

// StratmapUpdateRequest は戦略マップ部分更新の入力。nilのフィールドは既存値を維持する。
type StratmapUpdateRequest struct {
	ID          int64
	Title       *string
	Description *string
	Map         *string
}
