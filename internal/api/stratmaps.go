package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/stratmap/internal/auth"
	"github.com/nao1215/stratmap/internal/model"
	"github.com/nao1215/stratmap/internal/store"
	"github.com/nao1215/stratmap/pkg/httpx"
)

// StratmapStore は戦略マップの永続化操作。
type StratmapStore interface {
	ListStratmaps(ctx context.Context) ([]model.Stratmap, error)
	GetStratmap(ctx context.Context, id int64) (model.Stratmap, error)
	CreateStratmap(ctx context.Context, r store.StratmapCreateRequest) (model.Stratmap, error)
	UpdateStratmap(ctx context.Context, r store.StratmapUpdateRequest) (model.Stratmap, error)
	DeleteStratmap(ctx context.Context, id int64) error
}

const (
	msgStratmapNotFound   = "Stratmap not found"
	msgStratmapRequired   = "Title, description, and map are required"
	msgStratmapEmptyField = "Title, description, and map must not be empty"
	resourceStratmap      = "stratmap"
)

// createStratmapRequest は戦略マップ作成リクエストのJSON構造。
type createStratmapRequest struct {
	// Title はタイトル。
	Title string `json:"title" binding:"required"`
	// Description は説明。
	Description string `json:"description" binding:"required"`
	// Map はマップ本体。
	Map string `json:"map" binding:"required"`
}

// updateStratmapRequest は戦略マップ更新リクエストのJSON構造。省略したフィールドは変更しない。
type updateStratmapRequest struct {
	Title       *string `json:"title" binding:"omitnil,min=1"`
	Description *string `json:"description" binding:"omitnil,min=1"`
	Map         *string `json:"map" binding:"omitnil,min=1"`
}

// handleListStratmaps は戦略マップ一覧取得を処理するハンドラを返す。
func (s *Server) handleListStratmaps() gin.HandlerFunc {
	return func(c *gin.Context) {
		maps, err := s.store.ListStratmaps(c.Request.Context())
		if err != nil {
			internalError(c, err, "戦略マップ一覧の取得に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, maps)
	}
}

// handleGetStratmap は戦略マップ詳細取得を処理するハンドラを返す。
func (s *Server) handleGetStratmap() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceStratmap)
		if !ok {
			return
		}

		m, err := s.store.GetStratmap(c.Request.Context(), id)
		if err != nil {
			s.stratmapError(c, err, "戦略マップの取得に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, m)
	}
}

// handleCreateStratmap は戦略マップ作成を処理するハンドラを返す。
// 認証済みの場合は作成者としてユーザーIDを記録する。
func (s *Server) handleCreateStratmap() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createStratmapRequest
		if !bindJSON(c, &req, msgStratmapRequired) {
			return
		}

		r := store.StratmapCreateRequest{
			Title:       req.Title,
			Description: req.Description,
			Map:         req.Map,
		}
		if userID, ok := auth.GetUserID(c); ok {
			r.UserID = &userID
		}

		m, err := s.store.CreateStratmap(c.Request.Context(), r)
		if err != nil {
			internalError(c, err, "戦略マップの作成に失敗")
			return
		}
		httpx.Data(c, http.StatusCreated, m)
	}
}

// handleUpdateStratmap は戦略マップの部分更新を処理するハンドラを返す。
func (s *Server) handleUpdateStratmap() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceStratmap)
		if !ok {
			return
		}

		var req updateStratmapRequest
		if !bindJSON(c, &req, msgStratmapEmptyField) {
			return
		}

		m, err := s.store.UpdateStratmap(c.Request.Context(), store.StratmapUpdateRequest{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Map:         req.Map,
		})
		if err != nil {
			s.stratmapError(c, err, "戦略マップの更新に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, m)
	}
}

// handleDeleteStratmap は戦略マップ削除を処理するハンドラを返す。
func (s *Server) handleDeleteStratmap() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceStratmap)
		if !ok {
			return
		}

		if err := s.store.DeleteStratmap(c.Request.Context(), id); err != nil {
			s.stratmapError(c, err, "戦略マップの削除に失敗")
			return
		}
		httpx.Message(c, http.StatusOK, fmt.Sprintf("Stratmap %d deleted", id))
	}
}

// stratmapError はErrNotFoundを404に、それ以外を500に変換する。
func (s *Server) stratmapError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.Error(c, http.StatusNotFound, msgStratmapNotFound)
		return
	}
	internalError(c, err, msg)
}
