package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/service"
)

type sitePayload struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

func siteToPayload(site db.BlockedSite) gin.H {
	return gin.H{
		"id":       site.ID,
		"url":      site.URL,
		"category": site.Category,
	}
}

func handleSiteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSiteNotFound):
		respondError(c, http.StatusNotFound, "站点不存在")
	case errors.Is(err, service.ErrSiteExists):
		respondError(c, http.StatusConflict, "该站点已登记")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

// ListSites 返回拦截名单
func (a *API) ListSites(c *gin.Context) {
	sites, err := a.sites.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取站点列表失败")
		return
	}

	items := make([]gin.H, 0, len(sites))
	for _, site := range sites {
		items = append(items, siteToPayload(site))
	}
	c.JSON(http.StatusOK, gin.H{"sites": items})
}

// CreateSite 登记一个需要拦截的博彩站点
func (a *API) CreateSite(c *gin.Context) {
	var payload sitePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	site, err := a.sites.Create(service.SiteInput{URL: payload.URL, Category: payload.Category})
	if err != nil {
		handleSiteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"site": siteToPayload(*site)})
}

// UpdateSite 更新站点信息
func (a *API) UpdateSite(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的站点ID")
		return
	}

	var payload sitePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	site, err := a.sites.Update(id, service.SiteInput{URL: payload.URL, Category: payload.Category})
	if err != nil {
		handleSiteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": siteToPayload(*site)})
}

// DeleteSite 从拦截名单中移除站点
func (a *API) DeleteSite(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的站点ID")
		return
	}

	if err := a.sites.Delete(id); err != nil {
		handleSiteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
