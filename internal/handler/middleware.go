package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "__user_id"

// AuthRequired 校验 Authorization 头中的 Bearer 令牌，
// 通过后把用户 ID 写入请求上下文供后续处理器读取。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(c, http.StatusUnauthorized, "认证头格式不正确")
			c.Abort()
			return
		}

		userID, err := a.auth.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "登录已过期，请重新登录")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}
