package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/service"
)

type counselingPayload struct {
	Message string `json:"message"`
}

// Counsel 转发用户消息给 AI 陪伴者并返回回应
func (a *API) Counsel(c *gin.Context) {
	var payload counselingPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		respondError(c, http.StatusBadRequest, "消息内容不能为空")
		return
	}

	reply, err := a.counseling.Advise(c.Request.Context(), payload.Message)
	if err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusServiceUnavailable, "尚未配置 AI 服务，请联系管理员")
			return
		}
		respondError(c, http.StatusBadGateway, "AI 服务暂时不可用，请稍后再试")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// EmergencyAdvice 在冲动时刻返回一句支持与一条可立即执行的建议
func (a *API) EmergencyAdvice(c *gin.Context) {
	advice, err := a.counseling.Emergency(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusServiceUnavailable, "尚未配置 AI 服务，请联系管理员")
			return
		}
		respondError(c, http.StatusBadGateway, "AI 服务暂时不可用，请稍后再试")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"support": advice.Support,
		"tip":     advice.Tip,
	})
}
