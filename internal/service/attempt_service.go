package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
)

// AttemptService 负责访问尝试的记录与查询
// 记录成功后异步给用户发提醒邮件，发送失败不回滚记录
type AttemptService struct {
	db     *gorm.DB
	mailer Mailer
	now    func() time.Time
}

// NewAttemptService 构造 AttemptService
func NewAttemptService(gdb *gorm.DB, mailer Mailer) *AttemptService {
	return &AttemptService{
		db:     gdb,
		mailer: mailer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNow 覆盖时钟来源，主要用于测试。
func (s *AttemptService) SetNow(now func() time.Time) {
	if now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
		return
	}
	s.now = now
}

// Record 记录一次被拦截的访问尝试并触发提醒
func (s *AttemptService) Record(ctx context.Context, userID uint, url string) (*db.AccessAttempt, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, fmt.Errorf("attempt url is required")
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	attempt := db.AccessAttempt{
		UserID:     userID,
		URL:        trimmed,
		OccurredAt: s.now(),
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	go func(email, name, url string, when time.Time) {
		if err := s.mailer.SendAttemptAlert(context.Background(), email, name, url, when); err != nil {
			log.Printf("发送拦截提醒失败: %v", err)
		}
	}(user.Email, user.Name, attempt.URL, attempt.OccurredAt)

	return &attempt, nil
}

// List 返回用户的访问尝试记录，按时间倒序
func (s *AttemptService) List(userID uint) ([]db.AccessAttempt, error) {
	var attempts []db.AccessAttempt
	if err := s.db.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
