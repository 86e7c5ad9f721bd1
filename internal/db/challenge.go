package db

import (
	"time"

	"gorm.io/gorm"
)

// 挑战实例状态
const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusAbandoned = "abandoned"
)

// 挑战目标类型
const (
	ChallengeTargetStreak  = "streak"
	ChallengeTargetMoney   = "money"
	ChallengeTargetTimeMin = "time_min"
)

// ChallengeTemplate 为挑战目录中的模板
// Slug 全局唯一；StartsAt/ExpiresAt 控制可领取窗口，为空表示长期有效
type ChallengeTemplate struct {
	gorm.Model
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	TargetType  string `gorm:"size:20;not null"`
	TargetValue int    `gorm:"not null"`
	StartsAt    *time.Time
	ExpiresAt   *time.Time
	// 同 TriggerWindow.Active：不设列默认值，停用模板必须以 false 落库
	IsActive bool `gorm:"not null"`
}

// TableName 返回自定义表名
func (ChallengeTemplate) TableName() string {
	return "challenge_templates"
}

// UserChallenge 为用户领取的挑战实例
// 基线字段在 start 时快照，进度对比以基线为准；
// GoalDays/CheckinDays/LastCheckin 服务于按日打卡类挑战
type UserChallenge struct {
	gorm.Model
	UserID             uint `gorm:"index"`
	User               User `gorm:"constraint:OnDelete:CASCADE"`
	TemplateID         *uint
	Template           *ChallengeTemplate
	Status             string `gorm:"size:20;default:pending"`
	GoalDays           int
	CheckinDays        int `gorm:"default:0"`
	LastCheckin        *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	BaselineBestStreak int     `gorm:"default:0"`
	BaselineMoney      float64 `gorm:"default:0"`
	BaselineMinutes    int     `gorm:"default:0"`
}

// TableName 返回自定义表名
func (UserChallenge) TableName() string {
	return "user_challenges"
}

// SeedChallengeTemplates 写入内置挑战模板，按 slug 幂等
func SeedChallengeTemplates(gdb *gorm.DB) error {
	seeds := []ChallengeTemplate{
		{
			Slug:        "streak-7",
			Title:       "连续 7 天不投注",
			Description: "保持连胜 7 天，迈出戒断第一步。",
			TargetType:  ChallengeTargetStreak,
			TargetValue: 7,
			IsActive:    true,
		},
		{
			Slug:        "save-100",
			Title:       "省下 100 元",
			Description: "远离投注应用，把钱留在自己口袋里。",
			TargetType:  ChallengeTargetMoney,
			TargetValue: 100,
			IsActive:    true,
		},
		{
			Slug:        "time-300",
			Title:       "赢回 5 小时",
			Description: "累计 300 分钟不碰投注。",
			TargetType:  ChallengeTargetTimeMin,
			TargetValue: 300,
			IsActive:    true,
		},
	}

	for _, seed := range seeds {
		var existing ChallengeTemplate
		err := gdb.Where("slug = ?", seed.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := gdb.Create(&seed).Error; err != nil {
			return err
		}
	}
	return nil
}
