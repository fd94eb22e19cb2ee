// Package storetest はテスト用にマイグレーション済みのStoreを構築するヘルパーを提供する。
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/stratmap/internal/store"
)

// SQLiteConfig は一時ディレクトリ上のSQLiteファイルを指すStore設定を返す。
func SQLiteConfig(t testing.TB) store.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stratmap.db")
	return store.Config{
		Driver:      store.DriverSQLite,
		DSN:         "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		MaxConns:    4,
		IdleTimeout: time.Minute,
	}
}

// New はマイグレーションを適用したSQLiteバックエンドのStoreを返す。
// テスト終了時に接続を閉じる。
func New(t testing.TB) *store.Store {
	t.Helper()
	return Open(t, SQLiteConfig(t))
}

// Open は指定の設定でマイグレーションを適用し、Storeを返す。
func Open(t testing.TB, cfg store.Config) *store.Store {
	t.Helper()

	if err := store.Migrate(cfg); err != nil {
		t.Fatalf("マイグレーションに失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Storeのオープンに失敗: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
