package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userToPayload(user *db.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}
}

// Register 注册新用户
func (a *API) Register(c *gin.Context) {
	var payload registerPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	user, err := a.auth.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "该邮箱已被注册")
			return
		}
		respondError(c, http.StatusBadRequest, "注册失败，请检查邮箱和密码")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userToPayload(user)})
}

// Login 登录并签发 Bearer 令牌
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	token, user, err := a.auth.Login(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToPayload(user),
	})
}
