package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type contactPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func contactToPayload(contact db.EmergencyContact) gin.H {
	return gin.H{
		"id":    contact.ID,
		"name":  contact.Name,
		"email": contact.Email,
	}
}

// AddEmergencyContact 登记一位紧急联系人
func (a *API) AddEmergencyContact(c *gin.Context) {
	var payload contactPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	contact, err := a.emergency.AddContact(currentUserID(c), payload.Name, payload.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, "登记联系人失败，请填写姓名和邮箱")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": contactToPayload(*contact)})
}

// ListEmergencyContacts 返回全部紧急联系人
func (a *API) ListEmergencyContacts(c *gin.Context) {
	contacts, err := a.emergency.ListContacts(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取联系人失败")
		return
	}

	items := make([]gin.H, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, contactToPayload(contact))
	}
	c.JSON(http.StatusOK, gin.H{"contacts": items})
}

// DeleteEmergencyContact 删除指定联系人
func (a *API) DeleteEmergencyContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的联系人ID")
		return
	}

	if err := a.emergency.DeleteContact(currentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, "联系人不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除联系人失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// TriggerEmergencyAlert 触发紧急求助，向全部联系人群发提醒
func (a *API) TriggerEmergencyAlert(c *gin.Context) {
	user, err := a.auth.GetUser(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "用户不存在")
		return
	}

	result, err := a.emergency.TriggerAlert(c.Request.Context(), user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "触发紧急提醒失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    result.Message,
		"recipients": result.Recipients,
		"sent_at":    result.SentAt.UTC().Format(time.RFC3339),
	})
}
