// Package migration はデータベースのマイグレーションを管理する。
// embed.FSからSQLファイルを読み込み、golang-migrateのバージョン管理テーブルで適用状態を追跡する。
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Run は指定ディレクトリのマイグレーションを順序通りに適用する。
// 未適用のマイグレーションのみ実行し、適用済みの場合は何もしない。
// ファイル名形式: 000001_description.up.sql
//
// driverNameには "pgx" または "sqlite" を指定する。マイグレーション用に専用の接続を開き、
// 終了時に閉じるため、アプリケーションの接続プールには影響しない。
func Run(driverName, dsn string, fsys fs.FS, dir string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("マイグレーション用の接続に失敗: %w", err)
	}

	dbDriver, err := newDatabaseDriver(driverName, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("マイグレーションファイルの読み込みに失敗: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, dbDriver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("マイグレーションの初期化に失敗: %w", err)
	}
	defer func() {
		// データベースドライバのCloseがdbも閉じる
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("マイグレーションのクローズに失敗")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Str("driver", driverName).Msg("[Migration] マイグレーションを適用しました")
	return nil
}

// newDatabaseDriver はドライバ名に対応するgolang-migrateのデータベースドライバを生成する。
func newDatabaseDriver(driverName string, db *sql.DB) (database.Driver, error) {
	switch driverName {
	case "pgx":
		d, err := migratepgx.WithInstance(db, &migratepgx.Config{})
		if err != nil {
			return nil, fmt.Errorf("postgresドライバの初期化に失敗: %w", err)
		}
		return d, nil
	case "sqlite":
		d, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("sqliteドライバの初期化に失敗: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("未対応のドライバです: %s", driverName)
	}
}
