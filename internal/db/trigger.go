package db

import "gorm.io/gorm"

// TriggerWindow 描述一个高风险时段（赌瘾触发场景）
// Weekdays 为逗号分隔的星期序号（0=周一 ... 6=周日），为空表示每天生效
// StartTime/EndTime 存储 HH:MM 格式的时刻
type TriggerWindow struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Name      string `gorm:"size:100;not null"`
	Weekdays  string `gorm:"size:20"`
	StartTime string `gorm:"size:5;not null"`
	EndTime   string `gorm:"size:5;not null"`
	// 不设列默认值：gorm 写入零值 false 时会被列默认值覆盖，停用状态必须原样落库
	Active bool `gorm:"not null"`
}

// TableName 返回自定义表名
func (TriggerWindow) TableName() string {
	return "trigger_windows"
}
