package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了用户模型
// 戒断连胜的四个字段跟随用户记录存储：
// StreakStartedAt 为空表示当前没有进行中的连胜；
// LastCheckinDate 仅保留日期部分（UTC 零点）；
// BestStreakDays/LastStreakDays 只在连胜结束时更新。
type User struct {
	gorm.Model
	Name            string `gorm:"size:100;not null"`
	Email           string `gorm:"size:255;uniqueIndex;not null"`
	Password        string `gorm:"not null"`
	StreakStartedAt *time.Time
	LastCheckinDate *time.Time
	BestStreakDays  int `gorm:"default:0"`
	LastStreakDays  int `gorm:"default:0"`
}

// EnsureUser 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 主要用于启动脚本初始化演示账号。
func EnsureUser(name, email, password string) error {
	trimmedEmail := strings.TrimSpace(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{Name: strings.TrimSpace(name), Email: trimmedEmail, Password: string(hashed)}).Error
	}

	return nil
}
