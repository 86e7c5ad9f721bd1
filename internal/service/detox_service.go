package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

// ErrDetoxPlanNotFound 在指定计划不存在时返回
var ErrDetoxPlanNotFound = errors.New("detox plan not found")

// DetoxPlanInput 定义创建/更新计划的可配置字段
type DetoxPlanInput struct {
	Title           string
	Goals           string
	DailyActivities []string
	Tips            string
}

// DetoxPlanView 为对外展示的计划视图，活动清单已解码
type DetoxPlanView struct {
	ID              uint
	Title           string
	Goals           string
	DailyActivities []string
	Tips            string
	CreatedAt       string
	UpdatedAt       string
}

// DetoxService 负责戒断修复计划的增删改查
// 每日活动清单以 JSON 数组字符串存储，读写两侧统一编解码
type DetoxService struct {
	db *gorm.DB
}

// NewDetoxService 构造 DetoxService
func NewDetoxService(gdb *gorm.DB) *DetoxService {
	return &DetoxService{db: gdb}
}

// Create 新建一份计划
func (s *DetoxService) Create(userID uint, input DetoxPlanInput) (*DetoxPlanView, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("plan title is required")
	}

	encoded, err := encodeActivities(input.DailyActivities)
	if err != nil {
		return nil, err
	}

	plan := db.DetoxPlan{
		UserID:          userID,
		Title:           strings.TrimSpace(input.Title),
		Goals:           strings.TrimSpace(input.Goals),
		DailyActivities: encoded,
		Tips:            strings.TrimSpace(input.Tips),
	}
	if err := s.db.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("create detox plan: %w", err)
	}
	return planToView(plan), nil
}

// List 返回用户全部计划，按创建时间倒序
func (s *DetoxService) List(userID uint) ([]DetoxPlanView, error) {
	var plans []db.DetoxPlan
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list detox plans: %w", err)
	}

	views := make([]DetoxPlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, *planToView(plan))
	}
	return views, nil
}

// Update 整体更新指定计划，仅限本人名下
func (s *DetoxService) Update(userID, planID uint, input DetoxPlanInput) (*DetoxPlanView, error) {
	var plan db.DetoxPlan
	if err := s.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetoxPlanNotFound
		}
		return nil, fmt.Errorf("find detox plan: %w", err)
	}

	encoded, err := encodeActivities(input.DailyActivities)
	if err != nil {
		return nil, err
	}

	plan.Title = strings.TrimSpace(input.Title)
	plan.Goals = strings.TrimSpace(input.Goals)
	plan.DailyActivities = encoded
	plan.Tips = strings.TrimSpace(input.Tips)

	if err := s.db.Save(&plan).Error; err != nil {
		return nil, fmt.Errorf("update detox plan: %w", err)
	}
	return planToView(plan), nil
}

// Delete 删除指定计划，仅限本人名下
func (s *DetoxService) Delete(userID, planID uint) error {
	var plan db.DetoxPlan
	if err := s.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDetoxPlanNotFound
		}
		return fmt.Errorf("find detox plan: %w", err)
	}
	if err := s.db.Delete(&plan).Error; err != nil {
		return fmt.Errorf("delete detox plan: %w", err)
	}
	return nil
}

func encodeActivities(activities []string) (string, error) {
	if activities == nil {
		activities = []string{}
	}
	encoded, err := json.Marshal(activities)
	if err != nil {
		return "", fmt.Errorf("encode activities: %w", err)
	}
	return string(encoded), nil
}

func planToView(plan db.DetoxPlan) *DetoxPlanView {
	activities := []string{}
	if strings.TrimSpace(plan.DailyActivities) != "" {
		if err := json.Unmarshal([]byte(plan.DailyActivities), &activities); err != nil {
			activities = []string{}
		}
	}
	return &DetoxPlanView{
		ID:              plan.ID,
		Title:           plan.Title,
		Goals:           plan.Goals,
		DailyActivities: activities,
		Tips:            plan.Tips,
		CreatedAt:       plan.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       plan.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
