package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 打开内存数据库并迁移指定模型，返回清理函数
func setupTestDB(t *testing.T, models ...interface{}) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func createTestUser(t *testing.T, email string) db.User {
	t.Helper()
	user := db.User{Name: "测试用户", Email: email, Password: "hashed"}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// stubMailer 记录各类邮件调用，供断言使用
type stubMailer struct {
	mu              sync.Mutex
	attemptAlerts   []string
	accountNotices  []string
	emergencyAlerts [][]string
}

func (m *stubMailer) SendAttemptAlert(_ context.Context, to, _ string, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attemptAlerts = append(m.attemptAlerts, to)
	return nil
}

func (m *stubMailer) SendAccountNotice(_ context.Context, to, _ string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountNotices = append(m.accountNotices, to)
	return nil
}

func (m *stubMailer) SendEmergencyAlert(_ context.Context, recipients []string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergencyAlerts = append(m.emergencyAlerts, recipients)
	return nil
}

func (m *stubMailer) emergencyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emergencyAlerts)
}
