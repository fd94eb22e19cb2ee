// Stratmap APIのエントリポイント。
// ユーザーと戦略マップのCRUDを提供し、戦略マップへのアクセスにはベアラートークンを要求する。
// 設定は全て環境変数から読み込む。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/stratmap/internal/api"
	"github.com/nao1215/stratmap/internal/auth"
	"github.com/nao1215/stratmap/internal/config"
	"github.com/nao1215/stratmap/internal/store"
	"github.com/nao1215/stratmap/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Stratmap APIの起動に失敗")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	storeCfg := cfg.DB.StoreConfig()
	if cfg.DB.Migrate {
		if err := store.Migrate(storeCfg); err != nil {
			return err
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.Open(openCtx, storeCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("データベース接続のクローズに失敗")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(st.DB(), "stratmap"),
	)

	verifier := auth.NewRemoteVerifier(ctx, auth.RemoteVerifierConfig{
		Issuer:    cfg.Auth.Issuer(),
		Audience:  cfg.Auth.Audience,
		KeySetURL: cfg.Auth.KeySetURL(),
	})

	server := api.NewServer(api.Options{
		Port:            cfg.Port,
		ShutdownTimeout: cfg.ShutdownTimeout,
		CORSOrigin:      cfg.CORSOrigin,
		ProtectUsers:    cfg.Auth.ProtectUsers,
		Registry:        registry,
	}, st, verifier)

	log.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DB.Driver).
		Bool("protect_users", cfg.Auth.ProtectUsers).
		Msg("Stratmap APIを起動します")
	return server.Run(ctx)
}
