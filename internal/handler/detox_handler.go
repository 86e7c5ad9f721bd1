package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/service"
)

type detoxPayload struct {
	Title           string   `json:"title"`
	Goals           string   `json:"goals"`
	DailyActivities []string `json:"daily_activities"`
	Tips            string   `json:"tips"`
}

func detoxToPayload(view service.DetoxPlanView) gin.H {
	return gin.H{
		"id":               view.ID,
		"title":            view.Title,
		"goals":            view.Goals,
		"daily_activities": view.DailyActivities,
		"tips":             view.Tips,
		"created_at":       view.CreatedAt,
		"updated_at":       view.UpdatedAt,
	}
}

// CreateDetoxPlan 新建一份戒断修复计划
func (a *API) CreateDetoxPlan(c *gin.Context) {
	var payload detoxPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	plan, err := a.detox.Create(currentUserID(c), service.DetoxPlanInput{
		Title:           payload.Title,
		Goals:           payload.Goals,
		DailyActivities: payload.DailyActivities,
		Tips:            payload.Tips,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "创建计划失败，请填写标题")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": detoxToPayload(*plan)})
}

// ListDetoxPlans 返回全部计划
func (a *API) ListDetoxPlans(c *gin.Context) {
	plans, err := a.detox.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取计划失败")
		return
	}

	items := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		items = append(items, detoxToPayload(plan))
	}
	c.JSON(http.StatusOK, gin.H{"plans": items})
}

// UpdateDetoxPlan 整体更新指定计划
func (a *API) UpdateDetoxPlan(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var payload detoxPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	plan, err := a.detox.Update(currentUserID(c), id, service.DetoxPlanInput{
		Title:           payload.Title,
		Goals:           payload.Goals,
		DailyActivities: payload.DailyActivities,
		Tips:            payload.Tips,
	})
	if err != nil {
		if errors.Is(err, service.ErrDetoxPlanNotFound) {
			respondError(c, http.StatusNotFound, "计划不存在")
			return
		}
		respondError(c, http.StatusBadRequest, "更新计划失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": detoxToPayload(*plan)})
}

// DeleteDetoxPlan 删除指定计划
func (a *API) DeleteDetoxPlan(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	if err := a.detox.Delete(currentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrDetoxPlanNotFound) {
			respondError(c, http.StatusNotFound, "计划不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除计划失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
