package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/stratmap/internal/model"
)

const stratmapColumns = "id, title, description, map, user_id, created_at, updated_at"

func scanStratmap(sc scanner) (model.Stratmap, error) {
	var (
		m                model.Stratmap
		userID           sql.NullInt64
		created, updated timestamp
	)
	if err := sc.Scan(&m.ID, &m.Title, &m.Description, &m.Map, &userID, &created, &updated); err != nil {
		return model.Stratmap{}, err
	}
	if userID.Valid {
		m.UserID = &userID.Int64
	}
	m.CreatedAt = created.Time
	m.UpdatedAt = updated.Time
	return m, nil
}

// ListStratmaps は全ての戦略マップをID順に返す。0件の場合は空スライスを返す。
func (s *Store) ListStratmaps(ctx context.Context) ([]model.Stratmap, error) {
	maps, err := queryAll(ctx, s.q, scanStratmap, "SELECT "+stratmapColumns+" FROM stratmaps ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list stratmaps: %w", err)
	}
	return maps, nil
}

// GetStratmap はIDで戦略マップを取得する。
func (s *Store) GetStratmap(ctx context.Context, id int64) (model.Stratmap, error) {
	m, err := queryOne(ctx, s.q, scanStratmap, "SELECT "+stratmapColumns+" FROM stratmaps WHERE id = $1", id)
	if err != nil {
		return model.Stratmap{}, fmt.Errorf("get stratmap: %w", err)
	}
	return m, nil
}

// CreateStratmap は戦略マップを作成する。
func (s *Store) CreateStratmap(ctx context.Context, r StratmapCreateRequest) (model.Stratmap, error) {
	m, err := queryOne(ctx, s.q, scanStratmap,
		"INSERT INTO stratmaps (title, description, map, user_id) VALUES ($1, $2, $3, $4) RETURNING "+stratmapColumns,
		r.Title, r.Description, r.Map, r.UserID)
	if err != nil {
		return model.Stratmap{}, fmt.Errorf("create stratmap: %w", err)
	}
	return m, nil
}

// UpdateStratmap は指定されたフィールドのみ更新し、更新日時を現在時刻にする。
func (s *Store) UpdateStratmap(ctx context.Context, r StratmapUpdateRequest) (model.Stratmap, error) {
	m, err := queryOne(ctx, s.q, scanStratmap, `UPDATE stratmaps SET
    title = COALESCE($1, title),
    description = COALESCE($2, description),
    map = COALESCE($3, map),
    updated_at = CURRENT_TIMESTAMP
WHERE id = $4
RETURNING `+stratmapColumns,
		r.Title, r.Description, r.Map, r.ID)
	if err != nil {
		return model.Stratmap{}, fmt.Errorf("update stratmap: %w", err)
	}
	return m, nil
}

// DeleteStratmap は戦略マップを削除する。
func (s *Store) DeleteStratmap(ctx context.Context, id int64) error {
	if _, err := queryOne(ctx, s.q, scanID, "DELETE FROM stratmaps WHERE id = $1 RETURNING id", id); err != nil {
		return fmt.Errorf("delete stratmap: %w", err)
	}
	return nil
}
