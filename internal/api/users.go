package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/stratmap/internal/model"
	"github.com/nao1215/stratmap/internal/store"
	"github.com/nao1215/stratmap/pkg/httpx"
)

// UserStore はユーザーの永続化操作。
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	CreateUser(ctx context.Context, r store.UserCreateRequest) (model.User, error)
	UpdateUser(ctx context.Context, r store.UserUpdateRequest) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

const (
	msgUserNotFound   = "User not found"
	msgUserRequired   = "Username and email are required"
	msgUserEmptyField = "Username and email must not be empty"
	resourceUser      = "user"
)

// createUserRequest はユーザー作成リクエストのJSON構造。
type createUserRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required_without=Name"`
	// Name はusernameの別名。usernameが無い場合のみ使われる。
	Name string `json:"name" binding:"required_without=Username"`
	// Email はメールアドレス。
	Email string `json:"email" binding:"required"`
}

// updateUserRequest はユーザー更新リクエストのJSON構造。省略したフィールドは変更しない。
type updateUserRequest struct {
	Username *string `json:"username" binding:"omitnil,min=1"`
	Name     *string `json:"name" binding:"omitnil,min=1"`
	Email    *string `json:"email" binding:"omitnil,min=1"`
}

func (r *createUserRequest) normalize() {
	if r.Username == "" {
		r.Username = r.Name
	}
}

func (r *updateUserRequest) normalize() {
	if r.Username == nil {
		r.Username = r.Name
	}
}

// handleListUsers はユーザー一覧取得を処理するハンドラを返す。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.ListUsers(c.Request.Context())
		if err != nil {
			internalError(c, err, "ユーザー一覧の取得に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, users)
	}
}

// handleGetUser はユーザー詳細取得を処理するハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceUser)
		if !ok {
			return
		}

		user, err := s.store.GetUser(c.Request.Context(), id)
		if err != nil {
			s.userError(c, err, "ユーザーの取得に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, user)
	}
}

// handleCreateUser はユーザー作成を処理するハンドラを返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if !bindJSON(c, &req, msgUserRequired) {
			return
		}

		user, err := s.store.CreateUser(c.Request.Context(), store.UserCreateRequest{
			Username: req.Username,
			Email:    req.Email,
		})
		if err != nil {
			internalError(c, err, "ユーザーの作成に失敗")
			return
		}
		httpx.Data(c, http.StatusCreated, user)
	}
}

// handleUpdateUser はユーザーの部分更新を処理するハンドラを返す。
func (s *Server) handleUpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceUser)
		if !ok {
			return
		}

		var req updateUserRequest
		if !bindJSON(c, &req, msgUserEmptyField) {
			return
		}

		user, err := s.store.UpdateUser(c.Request.Context(), store.UserUpdateRequest{
			ID:       id,
			Username: req.Username,
			Email:    req.Email,
		})
		if err != nil {
			s.userError(c, err, "ユーザーの更新に失敗")
			return
		}
		httpx.Data(c, http.StatusOK, user)
	}
}

// handleDeleteUser はユーザー削除を処理するハンドラを返す。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, resourceUser)
		if !ok {
			return
		}

		if err := s.store.DeleteUser(c.Request.Context(), id); err != nil {
			s.userError(c, err, "ユーザーの削除に失敗")
			return
		}
		httpx.Message(c, http.StatusOK, fmt.Sprintf("User %d deleted", id))
	}
}

// userError はErrNotFoundを404に、それ以外を500に変換する。
func (s *Server) userError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.Error(c, http.StatusNotFound, msgUserNotFound)
		return
	}
	internalError(c, err, msg)
}
