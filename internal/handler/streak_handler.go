package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/service"
)

const dateFormat = "2006-01-02"

func streakToPayload(summary service.StreakSummary) gin.H {
	payload := gin.H{
		"current_days": summary.CurrentDays,
		"best_days":    summary.BestDays,
		"last_days":    summary.LastDays,
		"done_today":   summary.DoneToday,
	}
	if summary.StreakStartedAt != nil {
		payload["streak_started_at"] = summary.StreakStartedAt.UTC().Format(dateFormat)
	}
	if summary.LastCheckinDate != nil {
		payload["last_checkin_date"] = summary.LastCheckinDate.UTC().Format(dateFormat)
	}
	return payload
}

func handleStreakError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "用户不存在")
		return
	}
	respondError(c, http.StatusInternalServerError, "操作失败")
}

// GetStreak 返回当前连胜概览
func (a *API) GetStreak(c *gin.Context) {
	summary, err := a.streaks.Current(currentUserID(c))
	if err != nil {
		handleStreakError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streakToPayload(summary)})
}

// StartStreak 开启连胜；已在进行中的连胜不会被重置
func (a *API) StartStreak(c *gin.Context) {
	summary, err := a.streaks.Start(currentUserID(c))
	if err != nil {
		handleStreakError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streakToPayload(summary)})
}

// ResetStreak 主动结束连胜并结算最近/最佳纪录
func (a *API) ResetStreak(c *gin.Context) {
	summary, err := a.streaks.Reset(currentUserID(c))
	if err != nil {
		handleStreakError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streakToPayload(summary)})
}

// StreakCheckin 执行每日打卡，同一天重复打卡幂等
func (a *API) StreakCheckin(c *gin.Context) {
	summary, err := a.streaks.DailyCheckin(currentUserID(c))
	if err != nil {
		handleStreakError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streakToPayload(summary)})
}

// GetStreakHeatmap 返回区间内每日打卡情况，默认回溯一年
// 默认区间以连胜服务的时钟为准，与打卡口径一致
func (a *API) GetStreakHeatmap(c *gin.Context) {
	end := a.streaks.Today()
	start := end.AddDate(0, 0, -364)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation(dateFormat, raw, time.UTC)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的开始日期")
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.ParseInLocation(dateFormat, raw, time.UTC)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的结束日期")
			return
		}
		end = parsed
	}

	days, err := a.streaks.Heatmap(currentUserID(c), start, end)
	if err != nil {
		respondError(c, http.StatusBadRequest, "获取热力图数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"range": gin.H{"start": start.Format(dateFormat), "end": end.Format(dateFormat)},
		"days":  days,
	})
}
