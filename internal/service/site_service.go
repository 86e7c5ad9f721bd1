package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSiteNotFound 在指定站点不存在时返回
	ErrSiteNotFound = errors.New("site not found")
	// ErrSiteExists 在站点 URL 已登记时返回
	ErrSiteExists = errors.New("site already registered")
)

const defaultSiteCategory = "betting"

// SiteService 负责拦截站点名单的增删改查
type SiteService struct {
	db *gorm.DB
}

// SiteInput 定义登记/更新站点时可配置字段
type SiteInput struct {
	URL      string
	Category string
}

// NewSiteService 构造 SiteService
func NewSiteService(gdb *gorm.DB) *SiteService {
	return &SiteService{db: gdb}
}

// Create 登记一个拦截站点，URL 不可重复
func (s *SiteService) Create(input SiteInput) (*db.BlockedSite, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, fmt.Errorf("site url is required")
	}

	var existing db.BlockedSite
	err := s.db.Where("url = ?", url).First(&existing).Error
	if err == nil {
		return nil, ErrSiteExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check site: %w", err)
	}

	site := db.BlockedSite{
		URL:      url,
		Category: normalizeSiteCategory(input.Category),
	}
	if err := s.db.Create(&site).Error; err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return &site, nil
}

// List 返回全部拦截站点
func (s *SiteService) List() ([]db.BlockedSite, error) {
	var sites []db.BlockedSite
	if err := s.db.Order("created_at DESC").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

// Update 更新站点信息
func (s *SiteService) Update(id uint, input SiteInput) (*db.BlockedSite, error) {
	var site db.BlockedSite
	if err := s.db.First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("find site: %w", err)
	}

	site.URL = strings.TrimSpace(input.URL)
	site.Category = normalizeSiteCategory(input.Category)

	if err := s.db.Save(&site).Error; err != nil {
		return nil, fmt.Errorf("update site: %w", err)
	}
	return &site, nil
}

// Delete 删除指定站点
func (s *SiteService) Delete(id uint) error {
	var site db.BlockedSite
	if err := s.db.First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSiteNotFound
		}
		return fmt.Errorf("find site: %w", err)
	}
	if err := s.db.Delete(&site).Error; err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	return nil
}

func normalizeSiteCategory(category string) string {
	trimmed := strings.TrimSpace(strings.ToLower(category))
	if trimmed == "" {
		return defaultSiteCategory
	}
	return trimmed
}
