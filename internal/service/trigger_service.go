package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTriggerNotFound 在指定风险时段不存在时返回
	ErrTriggerNotFound = errors.New("trigger window not found")
	// ErrTriggerInvalidTime 在时刻格式非法时返回
	ErrTriggerInvalidTime = errors.New("invalid trigger time, expect HH:MM")
)

// TriggerInput 定义创建/更新风险时段的可配置字段
// Weekdays 使用 0=周一 ... 6=周日 的序号，空切片表示每天生效
type TriggerInput struct {
	Name      string
	Weekdays  []int
	StartTime string
	EndTime   string
	Active    *bool
}

// TriggerService 负责高风险时段的维护与命中判断
type TriggerService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTriggerService 构造 TriggerService
func NewTriggerService(gdb *gorm.DB) *TriggerService {
	return &TriggerService{
		db:  gdb,
		now: func() time.Time { return time.Now() },
	}
}

// SetNow 覆盖时钟来源，主要用于测试。
func (s *TriggerService) SetNow(now func() time.Time) {
	if now == nil {
		s.now = func() time.Time { return time.Now() }
		return
	}
	s.now = now
}

// Create 登记一个风险时段
func (s *TriggerService) Create(userID uint, input TriggerInput) (*db.TriggerWindow, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("trigger name is required")
	}
	if err := validateClock(input.StartTime); err != nil {
		return nil, err
	}
	if err := validateClock(input.EndTime); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	window := db.TriggerWindow{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Weekdays:  intsToCSV(input.Weekdays),
		StartTime: strings.TrimSpace(input.StartTime),
		EndTime:   strings.TrimSpace(input.EndTime),
		Active:    active,
	}
	if err := s.db.Create(&window).Error; err != nil {
		return nil, fmt.Errorf("create trigger window: %w", err)
	}
	return &window, nil
}

// List 返回用户全部风险时段，按创建时间倒序
func (s *TriggerService) List(userID uint) ([]db.TriggerWindow, error) {
	var windows []db.TriggerWindow
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("list trigger windows: %w", err)
	}
	return windows, nil
}

// Update 部分更新指定风险时段，仅限本人名下
func (s *TriggerService) Update(userID, windowID uint, input TriggerInput) (*db.TriggerWindow, error) {
	var window db.TriggerWindow
	if err := s.db.Where("id = ? AND user_id = ?", windowID, userID).First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTriggerNotFound
		}
		return nil, fmt.Errorf("find trigger window: %w", err)
	}

	if strings.TrimSpace(input.Name) != "" {
		window.Name = strings.TrimSpace(input.Name)
	}
	if input.Weekdays != nil {
		window.Weekdays = intsToCSV(input.Weekdays)
	}
	if strings.TrimSpace(input.StartTime) != "" {
		if err := validateClock(input.StartTime); err != nil {
			return nil, err
		}
		window.StartTime = strings.TrimSpace(input.StartTime)
	}
	if strings.TrimSpace(input.EndTime) != "" {
		if err := validateClock(input.EndTime); err != nil {
			return nil, err
		}
		window.EndTime = strings.TrimSpace(input.EndTime)
	}
	if input.Active != nil {
		window.Active = *input.Active
	}

	if err := s.db.Save(&window).Error; err != nil {
		return nil, fmt.Errorf("update trigger window: %w", err)
	}
	return &window, nil
}

// Delete 删除指定风险时段，仅限本人名下
func (s *TriggerService) Delete(userID, windowID uint) error {
	var window db.TriggerWindow
	if err := s.db.Where("id = ? AND user_id = ?", windowID, userID).First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTriggerNotFound
		}
		return fmt.Errorf("find trigger window: %w", err)
	}
	if err := s.db.Delete(&window).Error; err != nil {
		return fmt.Errorf("delete trigger window: %w", err)
	}
	return nil
}

// ActiveNow 返回当前星期与时刻命中的激活时段
func (s *TriggerService) ActiveNow(userID uint) ([]db.TriggerWindow, error) {
	var windows []db.TriggerWindow
	if err := s.db.Where("user_id = ? AND active = ?", userID, true).
		Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("list active windows: %w", err)
	}

	now := s.now()
	// time.Weekday 以周日为 0，这里换算为 0=周一 的序号
	weekday := (int(now.Weekday()) + 6) % 7
	clock := now.Format("15:04")

	hits := make([]db.TriggerWindow, 0, len(windows))
	for _, window := range windows {
		days := csvToInts(window.Weekdays)
		if len(days) > 0 && !containsInt(days, weekday) {
			continue
		}
		if window.StartTime <= clock && clock <= window.EndTime {
			hits = append(hits, window)
		}
	}
	return hits, nil
}

func validateClock(value string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(value)); err != nil {
		return ErrTriggerInvalidTime
	}
	return nil
}

func intsToCSV(values []int) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}

func csvToInts(value string) []int {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			continue
		}
		values = append(values, parsed)
	}
	return values
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
