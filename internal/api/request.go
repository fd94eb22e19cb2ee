package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nao1215/stratmap/pkg/httpx"
)

// msgInvalidBody はJSONとして解釈できないボディに対するメッセージ。
const msgInvalidBody = "Invalid request body"

// parseID はパスパラメータ:idを正の整数として解釈する。
// 解釈できない場合は400を書き出し false を返す。
func parseID(c *gin.Context, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(c, http.StatusBadRequest, "Invalid "+resource+" id")
		return 0, false
	}
	return id, true
}

// normalizer は検証後にフィールドの別名を解決するリクエスト。
type normalizer interface {
	normalize()
}

// bindJSON はボディをJSONとしてデコードし、bindingタグで検証する。
// 検証に失敗した場合はinvalidMsg、デコードに失敗した場合はmsgInvalidBodyで400を書き出す。
func bindJSON(c *gin.Context, dst any, invalidMsg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			httpx.Error(c, http.StatusBadRequest, invalidMsg)
		} else {
			httpx.Error(c, http.StatusBadRequest, msgInvalidBody)
		}
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	return true
}
