// Package auth はアクセストークンの検証と、トークンの主体に対応するローカルユーザーの
// プロビジョニングを行うGinミドルウェアを提供する。
//
// 処理は直線的でリトライしない:
//
//  1. Authorizationヘッダーからベアラートークンを取り出す
//  2. リモートの公開鍵セットで署名とissuer/audienceを検証する
//  3. subクレームが空でないことを確認する
//  4. subをキーにユーザーをアップサートする
//  5. クレームとユーザーをコンテキストに設定し、後続のハンドラを実行する
//
// 5より前に失敗した場合は後続のハンドラは実行されない。
// 後続のハンドラが失敗してもアップサートは取り消されない。
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nao1215/stratmap/internal/model"
	"github.com/nao1215/stratmap/internal/store"
	"github.com/nao1215/stratmap/pkg/httpx"
	"github.com/nao1215/stratmap/pkg/middleware"
)

// Ginコンテキストのキー。
const (
	contextKeyClaims = "auth_claims"
	contextKeyUser   = "auth_user"
	contextKeyUserID = "auth_user_id"
)

// 401レスポンスのメッセージ。
const (
	MsgMissingHeader  = "Missing Authorization header"
	MsgInvalidToken   = "Invalid or expired token"
	MsgInvalidPayload = "Invalid token payload"
)

// UserProvisioner はトークンの主体に対応するローカルユーザーを作成または更新する。
type UserProvisioner interface {
	UpsertUserBySubject(ctx context.Context, r store.UserUpsertRequest) (model.User, error)
}

// RequireAuth はベアラートークンを検証し、ローカルユーザーをアップサートするGinミドルウェアを返す。
func RequireAuth(v Verifier, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || rawToken == "" {
			httpx.Abort(c, http.StatusUnauthorized, MsgMissingHeader)
			return
		}

		ctx := c.Request.Context()
		claims, err := v.Verify(ctx, rawToken)
		if err != nil {
			log.Warn().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("アクセストークンが無効です")
			httpx.Abort(c, http.StatusUnauthorized, MsgInvalidToken)
			return
		}

		if claims.Subject == "" {
			httpx.Abort(c, http.StatusUnauthorized, MsgInvalidPayload)
			return
		}

		user, err := users.UpsertUserBySubject(ctx, store.UserUpsertRequest{
			Subject:  claims.Subject,
			Email:    claims.Email,
			Username: claims.Username,
		})
		if err != nil {
			log.Error().Err(err).Str("sub", claims.Subject).Str("request_id", middleware.GetRequestID(c)).Msg("ユーザーのアップサートに失敗")
			httpx.Abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Set(contextKeyUser, user)
		c.Set(contextKeyUserID, user.ID)
		c.Next()
	}
}

// GetClaims はGinコンテキストから検証済みのクレームを取得する。
// RequireAuthミドルウェアが事前に適用されている必要がある。
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// GetUser はGinコンテキストからアップサート済みのユーザーを取得する。
func GetUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// GetUserID はGinコンテキストからローカルユーザーのIDを取得する。
// 認証されていない場合は false を返す。
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
