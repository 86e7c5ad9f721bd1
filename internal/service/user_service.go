package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/quitbet/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrWrongPassword 在当前密码校验失败时返回
	ErrWrongPassword = errors.New("current password incorrect")
)

// UserService 负责账号资料维护（换绑邮箱、修改密码）
type UserService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB, mailer Mailer) *UserService {
	return &UserService{db: gdb, mailer: mailer}
}

// ChangeEmail 换绑邮箱：新邮箱不可占用，成功后通知旧邮箱
func (s *UserService) ChangeEmail(ctx context.Context, userID uint, newEmail string) (*db.User, error) {
	trimmed := strings.ToLower(strings.TrimSpace(newEmail))
	if trimmed == "" {
		return nil, fmt.Errorf("new email is required")
	}

	var occupied db.User
	err := s.db.Where("email = ?", trimmed).First(&occupied).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	oldEmail := user.Email
	user.Email = trimmed
	if err := s.db.Model(&user).Update("email", trimmed).Error; err != nil {
		return nil, fmt.Errorf("update email: %w", err)
	}

	// 通知发给旧邮箱，失败不影响换绑结果
	go func(email, name string) {
		if err := s.mailer.SendAccountNotice(context.Background(), email, name, "你的邮箱已成功更换为其他地址。"); err != nil {
			log.Printf("发送换绑通知失败: %v", err)
		}
	}(oldEmail, user.Name)

	return &user, nil
}

// ChangePassword 修改密码：先校验当前密码，成功后发送通知
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) (*db.User, error) {
	if strings.TrimSpace(next) == "" {
		return nil, fmt.Errorf("new password is required")
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return nil, ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	user.Password = string(hashed)

	go func(email, name string) {
		if err := s.mailer.SendAccountNotice(context.Background(), email, name, "你的密码已修改成功。如果不是你本人操作，请立即联系支持团队。"); err != nil {
			log.Printf("发送改密通知失败: %v", err)
		}
	}(user.Email, user.Name)

	return &user, nil
}
