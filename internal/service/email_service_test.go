package service

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEmailServiceDisabledWithoutSender(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "ap-southeast-1", "  ", "QuitBet", "https://app.quitbet.dev")
	if err != nil {
		t.Fatalf("expected disabled service, got error: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected service disabled without MAIL_FROM")
	}

	// 禁用态下所有发送调用直接跳过
	if err := svc.SendAttemptAlert(context.Background(), "a@example.com", "用户", "https://bet.example.com", time.Now()); err != nil {
		t.Fatalf("disabled send should be a no-op, got %v", err)
	}
	if err := svc.SendEmergencyAlert(context.Background(), []string{"b@example.com"}, "用户"); err != nil {
		t.Fatalf("disabled send should be a no-op, got %v", err)
	}
}

func TestMailBodiesIncludeSiteLink(t *testing.T) {
	when := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)

	body := attemptAlertBody("小王", "https://bet.example.com", when, "https://app.quitbet.dev")
	if !strings.Contains(body, "https://bet.example.com") || !strings.Contains(body, "2025-04-01 08:30:00") {
		t.Fatalf("attempt alert missing url or timestamp: %q", body)
	}
	if !strings.Contains(body, "https://app.quitbet.dev") {
		t.Fatalf("attempt alert missing site link: %q", body)
	}

	emergency := emergencyAlertBody("小王", "https://app.quitbet.dev")
	if !strings.Contains(emergency, "https://app.quitbet.dev/support") {
		t.Fatalf("emergency alert missing support link: %q", emergency)
	}

	// 未配置入口地址时正文不带链接
	plain := attemptAlertBody("小王", "https://bet.example.com", when, "")
	if strings.Contains(plain, "app.quitbet.dev") {
		t.Fatalf("expected no site link without base url: %q", plain)
	}
}
