package service

import (
	"errors"
	"testing"
	"time"

	"github.com/quitbet/internal/db"
)

func setupChallengeTest(t *testing.T) (*ChallengeService, db.User, func()) {
	t.Helper()
	cleanup := setupTestDB(t, &db.User{}, &db.ChallengeTemplate{}, &db.UserChallenge{})
	user := createTestUser(t, "challenge@example.com")
	return NewChallengeService(db.DB), user, cleanup
}

func TestSeedChallengeTemplatesIdempotent(t *testing.T) {
	cleanup := setupTestDB(t, &db.ChallengeTemplate{})
	defer cleanup()

	if err := db.SeedChallengeTemplates(db.DB); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := db.SeedChallengeTemplates(db.DB); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var count int64
	db.DB.Model(&db.ChallengeTemplate{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 templates after double seed, got %d", count)
	}
}

func TestChallengeCreateFromTemplate(t *testing.T) {
	svc, user, cleanup := setupChallengeTest(t)
	defer cleanup()

	if err := db.SeedChallengeTemplates(db.DB); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var template db.ChallengeTemplate
	if err := db.DB.Where("slug = ?", "streak-7").First(&template).Error; err != nil {
		t.Fatalf("failed to load template: %v", err)
	}

	challenge, err := svc.Create(user.ID, UserChallengeInput{TemplateID: &template.ID})
	if err != nil {
		t.Fatalf("create challenge failed: %v", err)
	}
	if challenge.Status != db.ChallengeStatusPending {
		t.Fatalf("expected pending status, got %s", challenge.Status)
	}
	// 按日类模板未指定目标天数时继承模板目标值
	if challenge.GoalDays != 7 {
		t.Fatalf("expected goal days 7 from template, got %d", challenge.GoalDays)
	}

	// 已有未结束的按日挑战时不允许再领
	if _, err := svc.Create(user.ID, UserChallengeInput{GoalDays: 30}); !errors.Is(err, ErrChallengeInProgress) {
		t.Fatalf("expected ErrChallengeInProgress, got %v", err)
	}
}

func TestChallengeCreateTemplateInactiveHiddenFromCatalog(t *testing.T) {
	svc, _, cleanup := setupChallengeTest(t)
	defer cleanup()

	inactive := false
	draft, err := svc.CreateTemplate(ChallengeTemplateInput{
		Slug:        "Draft-Challenge",
		Title:       "草稿挑战",
		TargetType:  db.ChallengeTargetMoney,
		TargetValue: 50,
		IsActive:    &inactive,
	})
	if err != nil {
		t.Fatalf("create template failed: %v", err)
	}
	if draft.Slug != "draft-challenge" {
		t.Fatalf("expected lowercased slug, got %q", draft.Slug)
	}

	// 停用状态必须原样落库，不能被列默认值吃掉
	var stored db.ChallengeTemplate
	if err := db.DB.First(&stored, draft.ID).Error; err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	if stored.IsActive {
		t.Fatal("expected template persisted as inactive")
	}

	if _, err := svc.CreateTemplate(ChallengeTemplateInput{
		Slug:        "live-challenge",
		Title:       "上线挑战",
		TargetType:  db.ChallengeTargetMoney,
		TargetValue: 100,
	}); err != nil {
		t.Fatalf("create template failed: %v", err)
	}

	templates, err := svc.Catalog()
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	if len(templates) != 1 || templates[0].Slug != "live-challenge" {
		t.Fatalf("expected only the active template in catalog, got %d", len(templates))
	}
}

func TestChallengeCreateOutsideTemplateWindow(t *testing.T) {
	svc, user, cleanup := setupChallengeTest(t)
	defer cleanup()

	expired := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	template := db.ChallengeTemplate{
		Slug:        "old-challenge",
		Title:       "过期挑战",
		TargetType:  db.ChallengeTargetStreak,
		TargetValue: 7,
		ExpiresAt:   &expired,
		IsActive:    true,
	}
	if err := db.DB.Create(&template).Error; err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	svc.SetNow(func() time.Time { return dateAt(2025, 1, 15) })

	if _, err := svc.Create(user.ID, UserChallengeInput{TemplateID: &template.ID}); !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable, got %v", err)
	}
}

func TestChallengeStartSnapshotsBaselines(t *testing.T) {
	svc, user, cleanup := setupChallengeTest(t)
	defer cleanup()

	if err := db.DB.Model(&db.User{}).Where("id = ?", user.ID).
		Update("best_streak_days", 12).Error; err != nil {
		t.Fatalf("failed to set best streak: %v", err)
	}

	challenge, err := svc.Create(user.ID, UserChallengeInput{GoalDays: 7})
	if err != nil {
		t.Fatalf("create challenge failed: %v", err)
	}

	started, err := svc.Start(user.ID, challenge.ID, ChallengeBaselines{Money: 50, Minutes: 120})
	if err != nil {
		t.Fatalf("start challenge failed: %v", err)
	}
	if started.Status != db.ChallengeStatusActive {
		t.Fatalf("expected active status, got %s", started.Status)
	}
	if started.BaselineBestStreak != 12 {
		t.Fatalf("expected baseline best streak 12, got %d", started.BaselineBestStreak)
	}
	if started.BaselineMoney != 50 || started.BaselineMinutes != 120 {
		t.Fatalf("unexpected baselines: money=%v minutes=%d", started.BaselineMoney, started.BaselineMinutes)
	}

	// 重复启动直接拒绝
	if _, err := svc.Start(user.ID, challenge.ID, ChallengeBaselines{}); err == nil {
		t.Fatal("expected error on double start")
	}
}

func TestChallengeCheckinCompletesAtGoal(t *testing.T) {
	svc, user, cleanup := setupChallengeTest(t)
	defer cleanup()

	challenge, err := svc.Create(user.ID, UserChallengeInput{GoalDays: 2})
	if err != nil {
		t.Fatalf("create challenge failed: %v", err)
	}
	if _, err := svc.Start(user.ID, challenge.ID, ChallengeBaselines{}); err != nil {
		t.Fatalf("start challenge failed: %v", err)
	}

	svc.SetNow(func() time.Time { return dateAt(2025, 3, 1) })
	first, err := svc.Checkin(user.ID, challenge.ID)
	if err != nil {
		t.Fatalf("first checkin failed: %v", err)
	}
	if first.CheckinDays != 1 || first.Status != db.ChallengeStatusActive {
		t.Fatalf("unexpected state after first checkin: days=%d status=%s", first.CheckinDays, first.Status)
	}

	// 同一天重复打卡被拒绝
	if _, err := svc.Checkin(user.ID, challenge.ID); !errors.Is(err, ErrCheckinAlreadyDone) {
		t.Fatalf("expected ErrCheckinAlreadyDone, got %v", err)
	}

	svc.SetNow(func() time.Time { return dateAt(2025, 3, 2) })
	second, err := svc.Checkin(user.ID, challenge.ID)
	if err != nil {
		t.Fatalf("second checkin failed: %v", err)
	}
	if second.CheckinDays != 2 {
		t.Fatalf("expected 2 checkin days, got %d", second.CheckinDays)
	}
	if second.Status != db.ChallengeStatusCompleted || second.CompletedAt == nil {
		t.Fatalf("expected completed challenge, got status=%s", second.Status)
	}

	// 完结后不可继续打卡
	svc.SetNow(func() time.Time { return dateAt(2025, 3, 3) })
	if _, err := svc.Checkin(user.ID, challenge.ID); !errors.Is(err, ErrChallengeNotActive) {
		t.Fatalf("expected ErrChallengeNotActive, got %v", err)
	}
}

func TestChallengeAbandonAndOwnership(t *testing.T) {
	svc, user, cleanup := setupChallengeTest(t)
	defer cleanup()

	challenge, err := svc.Create(user.ID, UserChallengeInput{GoalDays: 7})
	if err != nil {
		t.Fatalf("create challenge failed: %v", err)
	}

	// 其他用户无法操作这条挑战
	other := createTestUser(t, "other@example.com")
	if _, err := svc.Abandon(other.ID, challenge.ID); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound for other user, got %v", err)
	}

	abandoned, err := svc.Abandon(user.ID, challenge.ID)
	if err != nil {
		t.Fatalf("abandon failed: %v", err)
	}
	if abandoned.Status != db.ChallengeStatusAbandoned {
		t.Fatalf("expected abandoned status, got %s", abandoned.Status)
	}

	// 放弃后可以重新领取按日挑战
	if _, err := svc.Create(user.ID, UserChallengeInput{GoalDays: 7}); err != nil {
		t.Fatalf("expected new challenge after abandon, got %v", err)
	}
}
