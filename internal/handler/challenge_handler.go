package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type challengeTemplatePayload struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetType  string `json:"target_type"`
	TargetValue int    `json:"target_value"`
	StartsAt    string `json:"starts_at"`
	ExpiresAt   string `json:"expires_at"`
	IsActive    *bool  `json:"is_active"`
}

type challengeCreatePayload struct {
	TemplateID *uint `json:"template_id"`
	GoalDays   int   `json:"goal_days"`
}

type challengeStartPayload struct {
	BaselineMoney   float64 `json:"baseline_money"`
	BaselineMinutes int     `json:"baseline_minutes"`
}

func templateToPayload(template db.ChallengeTemplate) gin.H {
	item := gin.H{
		"id":           template.ID,
		"slug":         template.Slug,
		"title":        template.Title,
		"description":  template.Description,
		"target_type":  template.TargetType,
		"target_value": template.TargetValue,
		"is_active":    template.IsActive,
	}
	if template.StartsAt != nil {
		item["starts_at"] = template.StartsAt.UTC().Format(time.RFC3339)
	}
	if template.ExpiresAt != nil {
		item["expires_at"] = template.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return item
}

func challengeToPayload(challenge db.UserChallenge) gin.H {
	item := gin.H{
		"id":                   challenge.ID,
		"status":               challenge.Status,
		"goal_days":            challenge.GoalDays,
		"checkin_days":         challenge.CheckinDays,
		"baseline_best_streak": challenge.BaselineBestStreak,
		"baseline_money":       challenge.BaselineMoney,
		"baseline_minutes":     challenge.BaselineMinutes,
	}
	if challenge.Template != nil {
		item["template"] = templateToPayload(*challenge.Template)
	}
	if challenge.LastCheckin != nil {
		item["last_checkin"] = challenge.LastCheckin.UTC().Format(dateFormat)
	}
	if challenge.StartedAt != nil {
		item["started_at"] = challenge.StartedAt.UTC().Format(time.RFC3339)
	}
	if challenge.CompletedAt != nil {
		item["completed_at"] = challenge.CompletedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func handleChallengeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		respondError(c, http.StatusNotFound, "挑战不存在")
	case errors.Is(err, service.ErrTemplateNotFound):
		respondError(c, http.StatusNotFound, "挑战模板不存在")
	case errors.Is(err, service.ErrTemplateUnavailable):
		respondError(c, http.StatusConflict, "挑战模板不在可领取时间内")
	case errors.Is(err, service.ErrChallengeNotActive):
		respondError(c, http.StatusConflict, "挑战未在进行中")
	case errors.Is(err, service.ErrChallengeInProgress):
		respondError(c, http.StatusConflict, "已有进行中的挑战，请先完成或放弃")
	case errors.Is(err, service.ErrCheckinAlreadyDone):
		respondError(c, http.StatusConflict, "今天已经打过卡了")
	default:
		respondError(c, http.StatusBadRequest, "操作失败")
	}
}

// ListChallengeCatalog 返回可领取的挑战目录
func (a *API) ListChallengeCatalog(c *gin.Context) {
	templates, err := a.challenges.Catalog()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取挑战目录失败")
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, template := range templates {
		items = append(items, templateToPayload(template))
	}
	c.JSON(http.StatusOK, gin.H{"templates": items})
}

// CreateChallengeTemplate 在目录中新建挑战模板
func (a *API) CreateChallengeTemplate(c *gin.Context) {
	var payload challengeTemplatePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	startsAt, ok := parseOptionalTime(payload.StartsAt)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的开始时间")
		return
	}
	expiresAt, ok := parseOptionalTime(payload.ExpiresAt)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的过期时间")
		return
	}

	template, err := a.challenges.CreateTemplate(service.ChallengeTemplateInput{
		Slug:        payload.Slug,
		Title:       payload.Title,
		Description: payload.Description,
		TargetType:  payload.TargetType,
		TargetValue: payload.TargetValue,
		StartsAt:    startsAt,
		ExpiresAt:   expiresAt,
		IsActive:    payload.IsActive,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "创建挑战模板失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": templateToPayload(*template)})
}

// ListMyChallenges 返回当前用户领取的全部挑战
func (a *API) ListMyChallenges(c *gin.Context) {
	challenges, err := a.challenges.MyChallenges(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取挑战失败")
		return
	}

	items := make([]gin.H, 0, len(challenges))
	for _, challenge := range challenges {
		items = append(items, challengeToPayload(challenge))
	}
	c.JSON(http.StatusOK, gin.H{"challenges": items})
}

// CreateChallenge 领取一个挑战
func (a *API) CreateChallenge(c *gin.Context) {
	var payload challengeCreatePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	challenge, err := a.challenges.Create(currentUserID(c), service.UserChallengeInput{
		TemplateID: payload.TemplateID,
		GoalDays:   payload.GoalDays,
	})
	if err != nil {
		handleChallengeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"challenge": challengeToPayload(*challenge)})
}

// StartChallenge 启动挑战并快照基线
func (a *API) StartChallenge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的挑战ID")
		return
	}

	var payload challengeStartPayload
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &payload, "请求参数不合法") {
			return
		}
	}

	challenge, err := a.challenges.Start(currentUserID(c), id, service.ChallengeBaselines{
		Money:   payload.BaselineMoney,
		Minutes: payload.BaselineMinutes,
	})
	if err != nil {
		handleChallengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challengeToPayload(*challenge)})
}

// AbandonChallenge 放弃挑战
func (a *API) AbandonChallenge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的挑战ID")
		return
	}

	challenge, err := a.challenges.Abandon(currentUserID(c), id)
	if err != nil {
		handleChallengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challengeToPayload(*challenge)})
}

// CompleteChallenge 完结挑战
func (a *API) CompleteChallenge(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的挑战ID")
		return
	}

	challenge, err := a.challenges.Complete(currentUserID(c), id)
	if err != nil {
		handleChallengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challengeToPayload(*challenge)})
}

// ChallengeCheckin 按日挑战打卡
func (a *API) ChallengeCheckin(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的挑战ID")
		return
	}

	challenge, err := a.challenges.Checkin(currentUserID(c), id)
	if err != nil {
		handleChallengeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challengeToPayload(*challenge)})
}

func parseOptionalTime(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
