// Package api はusersとstratmapsのCRUDを提供するHTTPサーバーを実装する。
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/stratmap/internal/auth"
	"github.com/nao1215/stratmap/pkg/httpx"
	"github.com/nao1215/stratmap/pkg/middleware"
)

// Store はハンドラが使用する永続化ゲートウェイ。
// *store.Store が実装し、テストでは差し替え可能。
type Store interface {
	UserStore
	StratmapStore
	auth.UserProvisioner
}

// Options はサーバーの設定。
type Options struct {
	// Port はリッスンポート。
	Port string
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration
	// CORSOrigin はクロスオリジンリクエストを許可するオリジン。
	CORSOrigin string
	// ProtectUsers が true の場合、/api/v1/users にも認証を要求する。
	ProtectUsers bool
	// Registry はメトリクスの登録先。nilの場合は新しいレジストリを作成する。
	Registry *prometheus.Registry
}

// Server はAPIサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// opts はサーバーの設定。
	opts Options
	// store は永続化ゲートウェイ。
	store Store
	// verifier はアクセストークンの検証器。
	verifier auth.Verifier
	// registry はPrometheusのレジストリ。
	registry *prometheus.Registry
}

// NewServer は新しいAPIサーバーを生成する。
func NewServer(opts Options, st Store, verifier auth.Verifier) *Server {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.NewHTTPMetrics(registry).Handler())
	// パニックによる500もアクセスログとメトリクスに記録されるよう、それらより内側に置く
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(opts.CORSOrigin))

	s := &Server{
		router:   router,
		opts:     opts,
		store:    st,
		verifier: verifier,
		registry: registry,
	}
	s.setupRoutes()

	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", s.opts.ShutdownTimeout).Msg("サーバーをシャットダウンします")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	requireAuth := auth.RequireAuth(s.verifier, s.store)

	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Stratmap API running")
	})
	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "stratmap"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api/v1")
	{
		// 認証済みユーザー自身の情報
		api.GET("/me", requireAuth, s.handleMe())

		users := api.Group("/users")
		if s.opts.ProtectUsers {
			users.Use(requireAuth)
		}
		{
			users.GET("", s.handleListUsers())
			users.GET("/:id", s.handleGetUser())
			users.POST("", s.handleCreateUser())
			users.PUT("/:id", s.handleUpdateUser())
			users.DELETE("/:id", s.handleDeleteUser())
		}

		stratmaps := api.Group("/stratmaps", requireAuth)
		{
			stratmaps.GET("", s.handleListStratmaps())
			stratmaps.GET("/:id", s.handleGetStratmap())
			stratmaps.POST("", s.handleCreateStratmap())
			stratmaps.PUT("/:id", s.handleUpdateStratmap())
			stratmaps.DELETE("/:id", s.handleDeleteStratmap())
		}
	}
}

// handleMe は認証ミドルウェアがアップサートしたユーザーを返すハンドラを返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.GetUser(c)
		if !ok {
			httpx.Error(c, http.StatusUnauthorized, auth.MsgMissingHeader)
			return
		}
		httpx.Data(c, http.StatusOK, user)
	}
}

// internalError はエラーをログに記録し、500を返す。
func internalError(c *gin.Context, err error, msg string) {
	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", middleware.GetRequestID(c)).
		Msg(msg)
	_ = c.Error(err)
	httpx.Error(c, http.StatusInternalServerError, "Internal server error")
}
