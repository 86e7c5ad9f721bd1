package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type triggerPayload struct {
	Name      string `json:"name"`
	Weekdays  []int  `json:"weekdays"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Active    *bool  `json:"active"`
}

func triggerToPayload(window db.TriggerWindow) gin.H {
	return gin.H{
		"id":         window.ID,
		"name":       window.Name,
		"weekdays":   window.Weekdays,
		"start_time": window.StartTime,
		"end_time":   window.EndTime,
		"active":     window.Active,
	}
}

func handleTriggerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTriggerNotFound):
		respondError(c, http.StatusNotFound, "风险时段不存在")
	case errors.Is(err, service.ErrTriggerInvalidTime):
		respondError(c, http.StatusBadRequest, "时刻格式应为 HH:MM")
	default:
		respondError(c, http.StatusBadRequest, "操作失败")
	}
}

// CreateTrigger 登记一个高风险时段
func (a *API) CreateTrigger(c *gin.Context) {
	var payload triggerPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	window, err := a.triggers.Create(currentUserID(c), service.TriggerInput{
		Name:      payload.Name,
		Weekdays:  payload.Weekdays,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Active:    payload.Active,
	})
	if err != nil {
		handleTriggerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trigger": triggerToPayload(*window)})
}

// ListTriggers 返回全部风险时段
func (a *API) ListTriggers(c *gin.Context) {
	windows, err := a.triggers.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取风险时段失败")
		return
	}

	items := make([]gin.H, 0, len(windows))
	for _, window := range windows {
		items = append(items, triggerToPayload(window))
	}
	c.JSON(http.StatusOK, gin.H{"triggers": items})
}

// UpdateTrigger 部分更新风险时段
func (a *API) UpdateTrigger(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的时段ID")
		return
	}

	var payload triggerPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	window, err := a.triggers.Update(currentUserID(c), id, service.TriggerInput{
		Name:      payload.Name,
		Weekdays:  payload.Weekdays,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Active:    payload.Active,
	})
	if err != nil {
		handleTriggerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trigger": triggerToPayload(*window)})
}

// DeleteTrigger 删除风险时段
func (a *API) DeleteTrigger(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的时段ID")
		return
	}

	if err := a.triggers.Delete(currentUserID(c), id); err != nil {
		handleTriggerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListActiveTriggers 返回当前命中的风险时段
func (a *API) ListActiveTriggers(c *gin.Context) {
	windows, err := a.triggers.ActiveNow(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取风险时段失败")
		return
	}

	items := make([]gin.H, 0, len(windows))
	for _, window := range windows {
		items = append(items, triggerToPayload(window))
	}
	c.JSON(http.StatusOK, gin.H{"triggers": items, "in_risk_window": len(items) > 0})
}
