package db

import "gorm.io/gorm"

// DetoxPlan 保存一份戒断修复计划
// DailyActivities 以 JSON 数组字符串存储每日活动清单
type DetoxPlan struct {
	gorm.Model
	UserID          uint   `gorm:"index"`
	User            User   `gorm:"constraint:OnDelete:CASCADE"`
	Title           string `gorm:"size:200;not null"`
	Goals           string `gorm:"type:text"`
	DailyActivities string `gorm:"type:text"`
	Tips            string `gorm:"type:text"`
}

// TableName 返回自定义表名
func (DetoxPlan) TableName() string {
	return "detox_plans"
}
