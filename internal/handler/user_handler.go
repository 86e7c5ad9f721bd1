package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/service"
)

type changeEmailPayload struct {
	Email string `json:"email"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Me 返回当前登录用户信息
func (a *API) Me(c *gin.Context) {
	user, err := a.auth.GetUser(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// ChangeEmail 更换登录邮箱，并向旧邮箱发送变更提醒
func (a *API) ChangeEmail(c *gin.Context) {
	var payload changeEmailPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	user, err := a.users.ChangeEmail(c.Request.Context(), currentUserID(c), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, "该邮箱已被占用")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		default:
			respondError(c, http.StatusBadRequest, "更换邮箱失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// ChangePassword 修改登录密码，需先校验旧密码
func (a *API) ChangePassword(c *gin.Context) {
	var payload changePasswordPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	_, err := a.users.ChangePassword(c.Request.Context(), currentUserID(c), payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			respondError(c, http.StatusUnauthorized, "当前密码不正确")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		default:
			respondError(c, http.StatusBadRequest, "修改密码失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
