package db

import "gorm.io/gorm"

// EmergencyContact 保存用户的紧急联系人
// 触发紧急求助时会向这些邮箱群发提醒
type EmergencyContact struct {
	gorm.Model
	UserID uint   `gorm:"index"`
	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Name   string `gorm:"size:100;not null"`
	Email  string `gorm:"size:255;not null"`
}

// TableName 返回自定义表名
func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}
