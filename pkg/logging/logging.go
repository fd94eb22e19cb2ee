// Package logging はzerologのグローバルロガーを初期化する。
//
// 本番環境ではJSON、開発環境ではコンソール形式で出力する。
// 各パッケージは github.com/rs/zerolog/log のグローバルロガーを使用する。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config はログ出力の設定。
type Config struct {
	// Level は出力する最小レベル: trace, debug, info, warn, error。
	Level string
	// Format は "json" または "console"。
	Format string
	// Output は出力先。nilの場合は標準エラー出力。
	Output io.Writer
}

// Init はグローバルロガーを設定する。main()の先頭で一度呼び出す。
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "stratmap").Logger()
}

// parseLevel は文字列をzerolog.Levelに変換する。不明な値はinfoとして扱う。
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
