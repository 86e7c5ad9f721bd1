package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type attemptPayload struct {
	URL string `json:"url"`
}

func attemptToPayload(attempt db.AccessAttempt) gin.H {
	return gin.H{
		"id":          attempt.ID,
		"url":         attempt.URL,
		"occurred_at": attempt.OccurredAt.UTC().Format(time.RFC3339),
	}
}

// RecordAttempt 记录一次被拦截的访问尝试
func (a *API) RecordAttempt(c *gin.Context) {
	var payload attemptPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	attempt, err := a.attempts.Record(c.Request.Context(), currentUserID(c), payload.URL)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "用户不存在")
			return
		}
		respondError(c, http.StatusBadRequest, "记录访问尝试失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attempt": attemptToPayload(*attempt)})
}

// ListAttempts 返回当前用户的访问尝试记录
func (a *API) ListAttempts(c *gin.Context) {
	attempts, err := a.attempts.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取记录失败")
		return
	}

	items := make([]gin.H, 0, len(attempts))
	for _, attempt := range attempts {
		items = append(items, attemptToPayload(attempt))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": items})
}
