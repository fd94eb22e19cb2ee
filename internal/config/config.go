// Package config は環境変数からサービスの設定を読み込む。
//
// 設定は起動時に一度だけ構築され、必要なコンポーネントへ明示的に渡される。
// リクエスト処理中に環境変数を直接参照してはならない。
package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/nao1215/stratmap/internal/store"
)

// Config はサービス全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DB   DBConfig
	Auth AuthConfig
	Log  LogConfig

	// CORSOrigin はクロスオリジンリクエストを許可する唯一のオリジン。
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000" validate:"omitempty,url"`
}

// DBConfig はデータベース接続の設定。
type DBConfig struct {
	// Driver は "pgx"（PostgreSQL）または "sqlite"。
	Driver   string `env:"DB_DRIVER" envDefault:"pgx" validate:"oneof=pgx sqlite"`
	Host     string `env:"DB_HOST" envDefault:"localhost" validate:"required_if=Driver pgx"`
	Port     string `env:"DB_PORT" envDefault:"5432" validate:"required_if=Driver pgx"`
	User     string `env:"DB_USER" validate:"required_if=Driver pgx"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" validate:"required_if=Driver pgx"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// Path はSQLiteのデータベースファイルのパス。
	Path string `env:"DB_PATH" envDefault:"stratmap.db" validate:"required_if=Driver sqlite"`
	// MaxConns は接続プールの最大接続数。
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1"`
	// IdleTimeout はアイドル接続を解放するまでの時間。
	IdleTimeout time.Duration `env:"DB_IDLE_TIMEOUT" envDefault:"30s"`
	// Migrate は起動時にマイグレーションを適用するかどうか。
	Migrate bool `env:"DB_MIGRATE" envDefault:"true"`
}

// AuthConfig はアクセストークン検証の設定。
type AuthConfig struct {
	// Domain はIDプロバイダのドメイン（例: example.auth0.com）。
	Domain string `env:"AUTH0_DOMAIN" validate:"required,hostname_port|hostname"`
	// Audience はトークンに期待するaudience。
	Audience string `env:"AUTH0_AUDIENCE" validate:"required"`
	// JWKSURL は公開鍵セットのURL。空の場合はドメインから導出する。
	JWKSURL string `env:"AUTH_JWKS_URL" validate:"omitempty,url"`
	// ProtectUsers が true の場合、/api/v1/users にも認証を要求する。
	ProtectUsers bool `env:"AUTH_PROTECT_USERS" envDefault:"false"`
}

// LogConfig はログ出力の設定。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Format string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

// Load は環境変数から設定を読み込み、検証する。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("設定が不正です: %w", err)
	}
	return nil
}

// Issuer はトークンに期待するissuer。末尾のスラッシュまで含めて一致する必要がある。
func (c AuthConfig) Issuer() string {
	return "https://" + c.Domain + "/"
}

// KeySetURL は公開鍵セットのURLを返す。
func (c AuthConfig) KeySetURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return "https://" + c.Domain + "/.well-known/jwks.json"
}

// DSN はドライバに渡す接続文字列を返す。
func (c DBConfig) DSN() string {
	if c.Driver == store.DriverSQLite {
		return "file:" + c.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// StoreConfig は永続化ゲートウェイの設定に変換する。
func (c DBConfig) StoreConfig() store.Config {
	return store.Config{
		Driver:      c.Driver,
		DSN:         c.DSN(),
		MaxConns:    c.MaxConns,
		IdleTimeout: c.IdleTimeout,
	}
}
