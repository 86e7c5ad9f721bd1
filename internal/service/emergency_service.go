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

// ErrContactNotFound 在指定联系人不存在时返回
var ErrContactNotFound = errors.New("emergency contact not found")

// EmergencyAlertResult 描述一次紧急求助的处理结果
type EmergencyAlertResult struct {
	Message    string
	Recipients []string
	SentAt     time.Time
}

// EmergencyService 管理紧急联系人并负责复赌风险告警的群发
type EmergencyService struct {
	db     *gorm.DB
	mailer Mailer
	now    func() time.Time
}

// NewEmergencyService 构造 EmergencyService
func NewEmergencyService(gdb *gorm.DB, mailer Mailer) *EmergencyService {
	return &EmergencyService{
		db:     gdb,
		mailer: mailer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNow 覆盖时钟来源，主要用于测试。
func (s *EmergencyService) SetNow(now func() time.Time) {
	if now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
		return
	}
	s.now = now
}

// AddContact 登记一位紧急联系人
func (s *EmergencyService) AddContact(userID uint, name, email string) (*db.EmergencyContact, error) {
	trimmedName := strings.TrimSpace(name)
	trimmedEmail := strings.TrimSpace(email)
	if trimmedName == "" || trimmedEmail == "" {
		return nil, fmt.Errorf("contact name and email are required")
	}

	contact := db.EmergencyContact{
		UserID: userID,
		Name:   trimmedName,
		Email:  trimmedEmail,
	}
	if err := s.db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// ListContacts 返回用户的全部紧急联系人
func (s *EmergencyService) ListContacts(userID uint) ([]db.EmergencyContact, error) {
	var contacts []db.EmergencyContact
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact 删除指定联系人，仅限本人名下
func (s *EmergencyService) DeleteContact(userID, contactID uint) error {
	var contact db.EmergencyContact
	if err := s.db.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return fmt.Errorf("find contact: %w", err)
	}
	if err := s.db.Delete(&contact).Error; err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// TriggerAlert 触发紧急求助：有联系人时异步群发提醒，无联系人时直接说明
func (s *EmergencyService) TriggerAlert(ctx context.Context, user *db.User) (EmergencyAlertResult, error) {
	contacts, err := s.ListContacts(user.ID)
	if err != nil {
		return EmergencyAlertResult{}, err
	}

	emails := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		emails = append(emails, contact.Email)
	}

	if len(emails) == 0 {
		return EmergencyAlertResult{
			Message:    "尚未登记紧急联系人。",
			Recipients: []string{},
			SentAt:     s.now(),
		}, nil
	}

	go func(recipients []string, name string) {
		if err := s.mailer.SendEmergencyAlert(context.Background(), recipients, name); err != nil {
			log.Printf("发送紧急提醒失败: %v", err)
		}
	}(emails, user.Name)

	return EmergencyAlertResult{
		Message:    "提醒已发送。",
		Recipients: emails,
		SentAt:     s.now(),
	}, nil
}
