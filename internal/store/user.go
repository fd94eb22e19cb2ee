package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/stratmap/internal/model"
)

// userColumns はusersテーブルから取得する列。NULLの文字列は空文字列として扱う。
const userColumns = "id, COALESCE(username, ''), COALESCE(email, ''), auth_sub, created_at, updated_at"

func scanUser(sc scanner) (model.User, error) {
	var (
		u                model.User
		sub              sql.NullString
		created, updated timestamp
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.Email, &sub, &created, &updated); err != nil {
		return model.User{}, err
	}
	if sub.Valid {
		u.AuthSub = &sub.String
	}
	u.CreatedAt = created.Time
	u.UpdatedAt = updated.Time
	return u, nil
}

// ListUsers は全てのユーザーをID順に返す。0件の場合は空スライスを返す。
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := queryAll(ctx, s.q, scanUser, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser はIDでユーザーを取得する。
func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	u, err := queryOne(ctx, s.q, scanUser, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser はユーザーを作成する。IDと日時はストアが採番する。
func (s *Store) CreateUser(ctx context.Context, r UserCreateRequest) (model.User, error) {
	u, err := queryOne(ctx, s.q, scanUser,
		"INSERT INTO users (username, email) VALUES ($1, $2) RETURNING "+userColumns,
		r.Username, r.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateUser は指定されたフィールドのみ更新し、更新日時を現在時刻にする。
func (s *Store) UpdateUser(ctx context.Context, r UserUpdateRequest) (model.User, error) {
	u, err := queryOne(ctx, s.q, scanUser, `UPDATE users SET
    username = COALESCE($1, username),
    email = COALESCE($2, email),
    updated_at = CURRENT_TIMESTAMP
WHERE id = $3
RETURNING `+userColumns,
		r.Username, r.Email, r.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser はユーザーを削除する。
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := queryOne(ctx, s.q, scanID, "DELETE FROM users WHERE id = $1 RETURNING id", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UpsertUserBySubject はsubjectをキーにユーザーを作成、または既存ユーザーのメールアドレスと
// ユーザー名を更新して返す。トークンに含まれないクレームは既存値を維持する。
func (s *Store) UpsertUserBySubject(ctx context.Context, r UserUpsertRequest) (model.User, error) {
	u, err := queryOne(ctx, s.q, scanUser, `INSERT INTO users (auth_sub, email, username)
VALUES ($1, $2, $3)
ON CONFLICT (auth_sub) DO UPDATE SET
    email = COALESCE(EXCLUDED.email, users.email),
    username = COALESCE(EXCLUDED.username, users.username),
    updated_at = CURRENT_TIMESTAMP
RETURNING `+userColumns,
		r.Subject, r.Email, r.Username)
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}
