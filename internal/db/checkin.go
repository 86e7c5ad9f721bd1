package db

import (
	"time"

	"gorm.io/gorm"
)

// CheckinLog 记录每日打卡日志
// UserID + LogDate 采用唯一索引，保证同一天重复打卡幂等
// Source 标记打卡来源（manual/自动等）
type CheckinLog struct {
	gorm.Model
	UserID  uint      `gorm:"index;index:idx_checkin_unique,unique"`
	User    User      `gorm:"constraint:OnDelete:CASCADE"`
	LogDate time.Time `gorm:"index:idx_checkin_unique,unique"`
	Source  string
}

// TableName 重写确保唯一索引作用到 user_id + log_date
func (CheckinLog) TableName() string {
	return "checkin_logs"
}
