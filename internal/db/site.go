package db

import "gorm.io/gorm"

// BlockedSite 记录用户登记的博彩站点
// URL 全局唯一，Category 预留站点分类（默认 betting）
type BlockedSite struct {
	gorm.Model
	URL      string `gorm:"size:255;uniqueIndex;not null"`
	Category string `gorm:"size:50;default:betting"`
}

// TableName 返回自定义表名，避免 gorm 复数化歧义
func (BlockedSite) TableName() string {
	return "blocked_sites"
}
