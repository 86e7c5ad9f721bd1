package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrChallengeNotFound 在指定挑战不存在时返回
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrTemplateNotFound 在指定模板不存在时返回
	ErrTemplateNotFound = errors.New("challenge template not found")
	// ErrTemplateUnavailable 在模板不在可领取窗口内时返回
	ErrTemplateUnavailable = errors.New("challenge template unavailable or expired")
	// ErrChallengeNotActive 在挑战未处于进行中状态时返回
	ErrChallengeNotActive = errors.New("challenge is not active")
	// ErrChallengeInProgress 在已有进行中的按日挑战时返回
	ErrChallengeInProgress = errors.New("another daily challenge is in progress")
	// ErrCheckinAlreadyDone 在当日已打卡时返回
	ErrCheckinAlreadyDone = errors.New("already checked in today")
)

// ChallengeTemplateInput 定义创建模板的可配置字段
type ChallengeTemplateInput struct {
	Slug        string
	Title       string
	Description string
	TargetType  string
	TargetValue int
	StartsAt    *time.Time
	ExpiresAt   *time.Time
	IsActive    *bool
}

// UserChallengeInput 定义领取挑战时的可配置字段
type UserChallengeInput struct {
	TemplateID *uint
	GoalDays   int
}

// ChallengeBaselines 在挑战启动时快照，作为后续进度对比的基准
type ChallengeBaselines struct {
	Money   float64
	Minutes int
}

// ChallengeService 负责挑战目录与用户挑战实例的全生命周期
type ChallengeService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewChallengeService 构造 ChallengeService
func NewChallengeService(gdb *gorm.DB) *ChallengeService {
	return &ChallengeService{
		db:  gdb,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetNow 覆盖时钟来源，主要用于测试。
func (s *ChallengeService) SetNow(now func() time.Time) {
	if now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
		return
	}
	s.now = now
}

// Catalog 返回目录中的启用模板
func (s *ChallengeService) Catalog() ([]db.ChallengeTemplate, error) {
	var templates []db.ChallengeTemplate
	if err := s.db.Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list challenge templates: %w", err)
	}
	return templates, nil
}

// CreateTemplate 新建一个挑战模板
func (s *ChallengeService) CreateTemplate(input ChallengeTemplateInput) (*db.ChallengeTemplate, error) {
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if slug == "" || strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("template slug and title are required")
	}
	if err := validateTargetType(input.TargetType); err != nil {
		return nil, err
	}
	if input.TargetValue <= 0 {
		return nil, fmt.Errorf("target value must be positive")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	template := db.ChallengeTemplate{
		Slug:        slug,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		TargetType:  strings.TrimSpace(input.TargetType),
		TargetValue: input.TargetValue,
		StartsAt:    input.StartsAt,
		ExpiresAt:   input.ExpiresAt,
		IsActive:    active,
	}
	if err := s.db.Create(&template).Error; err != nil {
		return nil, fmt.Errorf("create challenge template: %w", err)
	}
	return &template, nil
}

// MyChallenges 返回用户领取的全部挑战，按创建时间倒序
func (s *ChallengeService) MyChallenges(userID uint) ([]db.UserChallenge, error) {
	var challenges []db.UserChallenge
	if err := s.db.Where("user_id = ?", userID).
		Preload("Template").
		Order("created_at DESC").
		Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("list user challenges: %w", err)
	}
	return challenges, nil
}

// Create 领取一个挑战：校验模板可领取窗口；
// 按日打卡类挑战同一时间只允许一个未结束实例。
func (s *ChallengeService) Create(userID uint, input UserChallengeInput) (*db.UserChallenge, error) {
	var template *db.ChallengeTemplate
	if input.TemplateID != nil {
		var found db.ChallengeTemplate
		if err := s.db.First(&found, *input.TemplateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, fmt.Errorf("find template: %w", err)
		}

		now := s.now()
		if (found.StartsAt != nil && found.StartsAt.After(now)) ||
			(found.ExpiresAt != nil && found.ExpiresAt.Before(now)) {
			return nil, ErrTemplateUnavailable
		}
		template = &found
	}

	goalDays := input.GoalDays
	if goalDays < 0 {
		goalDays = 0
	}
	if template != nil && template.TargetType == db.ChallengeTargetStreak && goalDays == 0 {
		goalDays = template.TargetValue
	}

	if goalDays > 0 {
		var open int64
		if err := s.db.Model(&db.UserChallenge{}).
			Where("user_id = ? AND goal_days > 0 AND status IN ?", userID,
				[]string{db.ChallengeStatusPending, db.ChallengeStatusActive}).
			Count(&open).Error; err != nil {
			return nil, fmt.Errorf("count open challenges: %w", err)
		}
		if open > 0 {
			return nil, ErrChallengeInProgress
		}
	}

	challenge := db.UserChallenge{
		UserID:   userID,
		Status:   db.ChallengeStatusPending,
		GoalDays: goalDays,
	}
	if template != nil {
		challenge.TemplateID = &template.ID
	}
	if err := s.db.Create(&challenge).Error; err != nil {
		return nil, fmt.Errorf("create user challenge: %w", err)
	}
	challenge.Template = template
	return &challenge, nil
}

func (s *ChallengeService) findOwned(userID, challengeID uint) (*db.UserChallenge, error) {
	var challenge db.UserChallenge
	if err := s.db.Where("id = ? AND user_id = ?", challengeID, userID).
		Preload("Template").
		First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("find user challenge: %w", err)
	}
	return &challenge, nil
}

// Start 启动挑战并快照基线：历史最佳连胜来自用户记录，金额/时长由调用方提供
func (s *ChallengeService) Start(userID, challengeID uint, baselines ChallengeBaselines) (*db.UserChallenge, error) {
	challenge, err := s.findOwned(userID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != db.ChallengeStatusPending {
		return nil, fmt.Errorf("challenge already started")
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	challenge.Status = db.ChallengeStatusActive
	challenge.StartedAt = &now
	challenge.BaselineBestStreak = user.BestStreakDays
	challenge.BaselineMoney = baselines.Money
	challenge.BaselineMinutes = baselines.Minutes

	if err := s.db.Save(challenge).Error; err != nil {
		return nil, fmt.Errorf("start challenge: %w", err)
	}
	return challenge, nil
}

// Abandon 放弃挑战
func (s *ChallengeService) Abandon(userID, challengeID uint) (*db.UserChallenge, error) {
	challenge, err := s.findOwned(userID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != db.ChallengeStatusPending && challenge.Status != db.ChallengeStatusActive {
		return nil, ErrChallengeNotActive
	}

	challenge.Status = db.ChallengeStatusAbandoned
	if err := s.db.Save(challenge).Error; err != nil {
		return nil, fmt.Errorf("abandon challenge: %w", err)
	}
	return challenge, nil
}

// Complete 手动完结挑战（金额/时长类目标由客户端判定达成后调用）
func (s *ChallengeService) Complete(userID, challengeID uint) (*db.UserChallenge, error) {
	challenge, err := s.findOwned(userID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != db.ChallengeStatusActive {
		return nil, ErrChallengeNotActive
	}

	now := s.now()
	challenge.Status = db.ChallengeStatusCompleted
	challenge.CompletedAt = &now
	if err := s.db.Save(challenge).Error; err != nil {
		return nil, fmt.Errorf("complete challenge: %w", err)
	}
	return challenge, nil
}

// Checkin 按日挑战打卡：每天一次，推进一天，达到目标天数即完结
func (s *ChallengeService) Checkin(userID, challengeID uint) (*db.UserChallenge, error) {
	challenge, err := s.findOwned(userID, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != db.ChallengeStatusActive {
		return nil, ErrChallengeNotActive
	}

	now := s.now()
	today := normalizeDate(now)
	if challenge.LastCheckin != nil && normalizeDate(*challenge.LastCheckin).Equal(today) {
		return nil, ErrCheckinAlreadyDone
	}

	challenge.CheckinDays++
	challenge.LastCheckin = &today

	if challenge.GoalDays > 0 && challenge.CheckinDays >= challenge.GoalDays {
		challenge.Status = db.ChallengeStatusCompleted
		challenge.CompletedAt = &now
	}

	if err := s.db.Save(challenge).Error; err != nil {
		return nil, fmt.Errorf("checkin challenge: %w", err)
	}
	return challenge, nil
}

func validateTargetType(targetType string) error {
	switch strings.TrimSpace(targetType) {
	case db.ChallengeTargetStreak, db.ChallengeTargetMoney, db.ChallengeTargetTimeMin:
		return nil
	default:
		return fmt.Errorf("unsupported target type %q", targetType)
	}
}
