// Package httpx はレスポンスエンベロープ {status, data|message} の書き出しを提供する。
package httpx

import (
	"github.com/gin-gonic/gin"
)

const (
	// StatusSuccess は成功レスポンスのstatus値。
	StatusSuccess = "success"
	// StatusError はエラーレスポンスのstatus値。
	StatusError = "error"
)

// Envelope は全てのハンドラが返す共通のレスポンス形式。
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Data はdataを含む成功レスポンスを書き出す。
func Data(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: StatusSuccess, Data: data})
}

// Message はmessageのみを含む成功レスポンスを書き出す。
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Status: StatusSuccess, Message: msg})
}

// Error はエラーレスポンスを書き出す。
func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Status: StatusError, Message: msg})
}

// Abort はエラーレスポンスを書き出し、後続のハンドラを実行しない。
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Envelope{Status: StatusError, Message: msg})
}
