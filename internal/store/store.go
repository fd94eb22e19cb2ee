// Package store はリレーショナルデータベースへの永続化ゲートウェイを提供する。
//
// 全ての操作は1つのパラメータ化クエリとして実行され、接続はクエリの間だけ
// プールから借り出される。PostgreSQL（pgx）とSQLite（modernc）の両方で
// 同じSQL文が動作するように記述している。
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nao1215/stratmap/pkg/migration"
)

// ErrNotFound は指定された行が存在しない場合に返される。
var ErrNotFound = errors.New("not found")

const (
	// DriverPostgres は本番環境で使用するPostgreSQLドライバ名。
	DriverPostgres = "pgx"
	// DriverSQLite はローカル開発とテストで使用するSQLiteドライバ名。
	DriverSQLite = "sqlite"
)

//go:embed migrations
var migrations embed.FS

// Config は接続プールの設定。
type Config struct {
	// Driver は "pgx" または "sqlite"。
	Driver string
	// DSN はドライバに渡す接続文字列。
	DSN string
	// MaxConns は同時に開く接続の上限。
	MaxConns int
	// IdleTimeout はアイドル状態の接続を解放するまでの時間。
	IdleTimeout time.Duration
}

// Querier はパラメータ化クエリを1つ実行するプリミティブ。
// *sql.DB がこれを満たす。
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store はユーザーと戦略マップの永続化を担う。
type Store struct {
	db *sql.DB
	q  Querier
}

// Open は接続プールを作成し、疎通を確認したStoreを返す。
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	if cfg.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(cfg.IdleTimeout)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースの疎通確認に失敗: %w", err)
	}

	return New(db), nil
}

// New は既存の接続プールからStoreを生成する。
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Migrate は埋め込まれたマイグレーションをドライバに応じて適用する。
func Migrate(cfg Config) error {
	dir := "migrations/postgres"
	if cfg.Driver == DriverSQLite {
		dir = "migrations/sqlite"
	}
	return migration.Run(cfg.Driver, cfg.DSN, migrations, dir)
}

// DB は内部の接続プールを返す。メトリクス収集に使用する。
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close は接続プールを閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// queryAll はクエリを実行し、全ての行をscanで変換して返す。
// 結果が0件の場合は空スライスを返す。
func queryAll[T any](ctx context.Context, q Querier, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// queryOne はクエリを実行し、先頭の1行を返す。
// 結果が0件の場合はErrNotFoundを返す。
func queryOne[T any](ctx context.Context, q Querier, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	items, err := queryAll(ctx, q, scan, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(items) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return items[0], nil
}

func scanID(sc scanner) (int64, error) {
	var id int64
	err := sc.Scan(&id)
	return id, err
}
