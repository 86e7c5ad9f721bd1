package db

import (
	"time"

	"gorm.io/gorm"
)

// AccessAttempt 记录一次被拦截的访问尝试
// URL 保留原始访问地址便于回溯；OccurredAt 为尝试发生时间
type AccessAttempt struct {
	gorm.Model
	UserID     uint   `gorm:"index"`
	User       User   `gorm:"constraint:OnDelete:CASCADE"`
	URL        string `gorm:"size:255;index"`
	OccurredAt time.Time
}

// TableName 返回自定义表名
func (AccessAttempt) TableName() string {
	return "access_attempts"
}
