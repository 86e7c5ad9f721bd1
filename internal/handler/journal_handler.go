package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type journalPayload struct {
	Text string `json:"text"`
}

func journalToPayload(entry db.JournalEntry) gin.H {
	return gin.H{
		"id":         entry.ID,
		"text":       entry.Text,
		"sentiment":  entry.Sentiment,
		"reply":      entry.Reply,
		"reply_html": entry.ReplyHTML,
		"created_at": entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateJournalEntry 写一篇情绪日记，由 AI 识别情绪并回应
func (a *API) CreateJournalEntry(c *gin.Context) {
	var payload journalPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	entry, err := a.journal.Create(c.Request.Context(), currentUserID(c), payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJournalTextEmpty):
			respondError(c, http.StatusBadRequest, "日记内容不能为空")
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusServiceUnavailable, "尚未配置 AI 服务，请联系管理员")
		default:
			respondError(c, http.StatusInternalServerError, "保存日记失败")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": journalToPayload(*entry)})
}

// ListJournalEntries 返回当前用户的日记列表
func (a *API) ListJournalEntries(c *gin.Context) {
	entries, err := a.journal.List(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日记失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, journalToPayload(entry))
	}
	c.JSON(http.StatusOK, gin.H{"entries": items})
}
