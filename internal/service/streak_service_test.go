package service

import (
	"testing"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStreakTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.CheckinLog{}); err != nil {
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

func dateAt(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func createStreakUser(t *testing.T, state StreakState) db.User {
	t.Helper()
	user := db.User{
		Name:            "测试用户",
		Email:           "streak@example.com",
		Password:        "hashed",
		StreakStartedAt: state.StreakStartedAt,
		LastCheckinDate: state.LastCheckinDate,
		BestStreakDays:  state.BestStreakDays,
		LastStreakDays:  state.LastStreakDays,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestCurrentStreakDays(t *testing.T) {
	// 无连胜
	if got := CurrentStreakDays(StreakState{}); got != 0 {
		t.Fatalf("expected 0 for empty state, got %d", got)
	}

	start := dateAt(2025, 1, 1)
	sameDay := dateAt(2025, 1, 1)
	// 同日开始并打卡记 1 天
	if got := CurrentStreakDays(StreakState{StreakStartedAt: &start, LastCheckinDate: &sameDay}); got != 1 {
		t.Fatalf("expected 1 for same-day streak, got %d", got)
	}

	last := dateAt(2025, 1, 5)
	if got := CurrentStreakDays(StreakState{StreakStartedAt: &start, LastCheckinDate: &last}); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}

	// 起点带时间分量不影响按日口径
	startWithClock := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	if got := CurrentStreakDays(StreakState{StreakStartedAt: &startWithClock, LastCheckinDate: &last}); got != 5 {
		t.Fatalf("expected 5 with clock component, got %d", got)
	}

	// 异常数据：打卡日早于起点时钳到 0
	early := dateAt(2024, 12, 20)
	if got := CurrentStreakDays(StreakState{StreakStartedAt: &start, LastCheckinDate: &early}); got != 0 {
		t.Fatalf("expected 0 for negative span, got %d", got)
	}
}

func TestApplyDailyCheckinSameDayIdempotent(t *testing.T) {
	start := dateAt(2025, 1, 1)
	today := dateAt(2025, 1, 3)
	state := StreakState{StreakStartedAt: &start, LastCheckinDate: &today}

	first := applyDailyCheckin(state, today)
	second := applyDailyCheckin(first, today)

	if CurrentStreakDays(first) != CurrentStreakDays(second) {
		t.Fatal("same-day checkin must be idempotent")
	}
	if first.StreakStartedAt != state.StreakStartedAt {
		t.Fatal("same-day checkin must not touch streak start")
	}
	if first.BestStreakDays != 0 || first.LastStreakDays != 0 {
		t.Fatal("same-day checkin must not close the streak")
	}
}

func TestApplyDailyCheckinStartsFreshStreak(t *testing.T) {
	today := dateAt(2025, 3, 10)
	next := applyDailyCheckin(StreakState{}, today)

	if next.StreakStartedAt == nil || !normalizeDate(*next.StreakStartedAt).Equal(today) {
		t.Fatal("expected streak to start today")
	}
	if next.LastCheckinDate == nil || !next.LastCheckinDate.Equal(today) {
		t.Fatal("expected last checkin date set to today")
	}
	if got := CurrentStreakDays(next); got != 1 {
		t.Fatalf("expected first checkin to yield 1 day, got %d", got)
	}
}

func TestApplyDailyCheckinContinuesAcrossOneDayGap(t *testing.T) {
	// P3：起点 D、上次打卡 D+2，在 D+3 打卡（间隔 1 天）不断签
	start := dateAt(2025, 1, 1)
	last := dateAt(2025, 1, 3)
	state := StreakState{StreakStartedAt: &start, LastCheckinDate: &last}

	next := applyDailyCheckin(state, dateAt(2025, 1, 4))

	if next.StreakStartedAt == nil || !next.StreakStartedAt.Equal(start) {
		t.Fatal("one-day gap must not reset streak start")
	}
	if got := CurrentStreakDays(next); got != 4 {
		t.Fatalf("expected 4 days, got %d", got)
	}
	if next.LastStreakDays != 0 || next.BestStreakDays != 0 {
		t.Fatal("continuous checkin must not close the streak")
	}
}

func TestApplyDailyCheckinBreaksAfterLongGap(t *testing.T) {
	// P4：起点 D、上次打卡 D+2，在 D+5 打卡（间隔 3 天）断签重开
	start := dateAt(2025, 1, 1)
	last := dateAt(2025, 1, 3)
	today := dateAt(2025, 1, 6)
	state := StreakState{StreakStartedAt: &start, LastCheckinDate: &last, BestStreakDays: 2}

	next := applyDailyCheckin(state, today)

	if next.LastStreakDays != 3 {
		t.Fatalf("expected broken streak recorded as 3 days, got %d", next.LastStreakDays)
	}
	if next.BestStreakDays != 3 {
		t.Fatalf("expected best raised to 3, got %d", next.BestStreakDays)
	}
	if next.StreakStartedAt == nil || !normalizeDate(*next.StreakStartedAt).Equal(today) {
		t.Fatal("expected new streak to start today")
	}
	if got := CurrentStreakDays(next); got != 1 {
		t.Fatalf("expected fresh streak of 1 day, got %d", got)
	}
}

func TestCloseStreakWithoutActiveStreak(t *testing.T) {
	// P5：没有进行中的连胜时 reset 不改动 best/last
	last := dateAt(2025, 2, 1)
	state := StreakState{LastCheckinDate: &last, BestStreakDays: 9, LastStreakDays: 4}

	next := closeStreak(state)

	if next.BestStreakDays != 9 || next.LastStreakDays != 4 {
		t.Fatalf("reset without streak must keep counters, got best=%d last=%d", next.BestStreakDays, next.LastStreakDays)
	}
	if next.LastCheckinDate == nil || !next.LastCheckinDate.Equal(last) {
		t.Fatal("reset must keep last checkin date for history display")
	}
}

func TestBestStreakMonotonic(t *testing.T) {
	// P6：任意操作序列下 best 单调不减
	state := StreakState{}
	best := 0
	day := dateAt(2025, 1, 1)

	steps := []int{0, 1, 1, 3, 1, 1, 1, 1, 5, 1, 2, 4}
	for _, gap := range steps {
		day = day.AddDate(0, 0, gap)
		state = applyDailyCheckin(state, day)
		if state.BestStreakDays < best {
			t.Fatalf("best streak decreased from %d to %d", best, state.BestStreakDays)
		}
		best = state.BestStreakDays
	}

	state = closeStreak(state)
	if state.BestStreakDays < best {
		t.Fatalf("best streak decreased on close: %d -> %d", best, state.BestStreakDays)
	}
}

func TestBestStreakOnlyUpdatedOnClose(t *testing.T) {
	// 进行中的连胜即便超过历史最佳，也要等到结算才反映到 best
	start := dateAt(2025, 1, 1)
	state := StreakState{StreakStartedAt: &start, BestStreakDays: 2}
	day := start
	for i := 0; i < 6; i++ {
		state = applyDailyCheckin(state, day)
		day = day.AddDate(0, 0, 1)
	}

	if got := CurrentStreakDays(state); got != 6 {
		t.Fatalf("expected running streak of 6, got %d", got)
	}
	if state.BestStreakDays != 2 {
		t.Fatalf("best must stay at 2 while streak is running, got %d", state.BestStreakDays)
	}

	state = closeStreak(state)
	if state.BestStreakDays != 6 {
		t.Fatalf("expected best updated to 6 on close, got %d", state.BestStreakDays)
	}
}

func TestStreakServiceCheckinScenarios(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)

	// 场景：起点 2025-01-01、昨日已打卡，今日打卡应得 2 天
	start := dateAt(2025, 1, 1)
	last := dateAt(2025, 1, 1)
	user := createStreakUser(t, StreakState{StreakStartedAt: &start, LastCheckinDate: &last})

	svc.SetNow(func() time.Time { return time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC) })

	summary, err := svc.DailyCheckin(user.ID)
	if err != nil {
		t.Fatalf("DailyCheckin returned error: %v", err)
	}
	if summary.CurrentDays != 2 {
		t.Fatalf("expected 2 days, got %d", summary.CurrentDays)
	}
	if summary.StreakStartedAt == nil || !summary.StreakStartedAt.Equal(start) {
		t.Fatal("streak start must be unchanged")
	}
	if !summary.DoneToday {
		t.Fatal("expected done-today flag after checkin")
	}

	// 同日重复打卡幂等，且不落第二条日志
	again, err := svc.DailyCheckin(user.ID)
	if err != nil {
		t.Fatalf("repeat DailyCheckin returned error: %v", err)
	}
	if again.CurrentDays != 2 {
		t.Fatalf("expected repeat checkin to keep 2 days, got %d", again.CurrentDays)
	}

	var logCount int64
	db.DB.Model(&db.CheckinLog{}).Where("user_id = ?", user.ID).Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected exactly 1 checkin log, got %d", logCount)
	}
}

func TestStreakServiceBreakScenario(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)

	// 场景：起点 2025-01-01、上次打卡 2025-01-05，2025-01-08 打卡断签
	start := dateAt(2025, 1, 1)
	last := dateAt(2025, 1, 5)
	user := createStreakUser(t, StreakState{StreakStartedAt: &start, LastCheckinDate: &last})

	svc.SetNow(func() time.Time { return time.Date(2025, 1, 8, 7, 0, 0, 0, time.UTC) })

	summary, err := svc.DailyCheckin(user.ID)
	if err != nil {
		t.Fatalf("DailyCheckin returned error: %v", err)
	}
	if summary.LastDays != 5 {
		t.Fatalf("expected closed streak of 5 days, got %d", summary.LastDays)
	}
	if summary.BestDays != 5 {
		t.Fatalf("expected best of 5 days, got %d", summary.BestDays)
	}
	if summary.CurrentDays != 1 {
		t.Fatalf("expected new streak of 1 day, got %d", summary.CurrentDays)
	}
	if summary.StreakStartedAt == nil || !normalizeDate(*summary.StreakStartedAt).Equal(dateAt(2025, 1, 8)) {
		t.Fatal("expected new streak started on checkin day")
	}

	// 落库字段与概览一致
	var reloaded db.User
	if err := db.DB.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.BestStreakDays != 5 || reloaded.LastStreakDays != 5 {
		t.Fatalf("persisted counters mismatch: best=%d last=%d", reloaded.BestStreakDays, reloaded.LastStreakDays)
	}
}

func TestStreakServiceFreshUserFlow(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)
	user := createStreakUser(t, StreakState{})

	svc.SetNow(func() time.Time { return time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC) })

	current, err := svc.Current(user.ID)
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if current.CurrentDays != 0 {
		t.Fatalf("fresh user must have 0 days, got %d", current.CurrentDays)
	}

	summary, err := svc.DailyCheckin(user.ID)
	if err != nil {
		t.Fatalf("DailyCheckin returned error: %v", err)
	}
	if summary.CurrentDays != 1 {
		t.Fatalf("first checkin must yield 1 day, got %d", summary.CurrentDays)
	}
	if summary.StreakStartedAt == nil || summary.LastCheckinDate == nil {
		t.Fatal("first checkin must set start and last checkin date")
	}
}

func TestStreakServiceStartTwiceKeepsClock(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)
	user := createStreakUser(t, StreakState{})

	svc.SetNow(func() time.Time { return time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC) })
	first, err := svc.Start(user.ID)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// 两天后再次 Start 不应重置起点
	svc.SetNow(func() time.Time { return time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC) })
	second, err := svc.Start(user.ID)
	if err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}
	if second.StreakStartedAt == nil || !second.StreakStartedAt.Equal(*first.StreakStartedAt) {
		t.Fatal("starting twice must not reset the streak clock")
	}
}

func TestStreakServiceResetRecordsCounters(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)
	start := dateAt(2025, 6, 1)
	last := dateAt(2025, 6, 4)
	user := createStreakUser(t, StreakState{StreakStartedAt: &start, LastCheckinDate: &last, BestStreakDays: 2})

	summary, err := svc.Reset(user.ID)
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if summary.CurrentDays != 0 {
		t.Fatalf("expected streak cleared, got %d days", summary.CurrentDays)
	}
	if summary.LastDays != 4 || summary.BestDays != 4 {
		t.Fatalf("expected counters of 4, got last=%d best=%d", summary.LastDays, summary.BestDays)
	}
	if summary.LastCheckinDate == nil || !summary.LastCheckinDate.Equal(last) {
		t.Fatal("reset must keep last checkin date")
	}
}

func TestStreakServiceHeatmap(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)
	user := createStreakUser(t, StreakState{})

	for _, day := range []time.Time{dateAt(2025, 7, 1), dateAt(2025, 7, 2), dateAt(2025, 7, 4)} {
		checkinDay := day
		svc.SetNow(func() time.Time { return checkinDay.Add(10 * time.Hour) })
		if _, err := svc.DailyCheckin(user.ID); err != nil {
			t.Fatalf("DailyCheckin returned error: %v", err)
		}
	}

	days, err := svc.Heatmap(user.ID, dateAt(2025, 7, 1), dateAt(2025, 7, 4))
	if err != nil {
		t.Fatalf("Heatmap returned error: %v", err)
	}
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	expected := []bool{true, true, false, true}
	for i, want := range expected {
		if days[i].Checked != want {
			t.Fatalf("day %s: expected checked=%v", days[i].Date, want)
		}
	}

	if _, err := svc.Heatmap(user.ID, dateAt(2025, 7, 4), dateAt(2025, 7, 1)); err == nil {
		t.Fatal("expected error for inverted range")
	}
}
