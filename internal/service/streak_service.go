package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/quitbet/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUserNotFound 在指定用户不存在时返回
var ErrUserNotFound = errors.New("user not found")

// StreakState 为连胜计算所需的用户字段子集
// 纯函数状态机只读写这四个字段，便于脱离数据库做单元测试
type StreakState struct {
	StreakStartedAt *time.Time
	LastCheckinDate *time.Time
	BestStreakDays  int
	LastStreakDays  int
}

// StreakSummary 汇总一次读取或打卡后的连胜信息
type StreakSummary struct {
	CurrentDays     int
	BestDays        int
	LastDays        int
	StreakStartedAt *time.Time
	LastCheckinDate *time.Time
	DoneToday       bool
}

// normalizeDate 将任意时刻归一化为 UTC 零点日期，连胜口径统一按日历日计算
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween 返回 from 到 to 之间相差的日历天数
func daysBetween(from, to time.Time) int {
	return int(normalizeDate(to).Sub(normalizeDate(from)).Hours() / 24)
}

// CurrentStreakDays 计算当前连胜天数，是所有读写路径共用的唯一口径。
// 任一字段为空视为没有连胜；同日开始并打卡记 1 天（含首尾），负值钳到 0。
func CurrentStreakDays(state StreakState) int {
	if state.StreakStartedAt == nil || state.LastCheckinDate == nil {
		return 0
	}
	days := daysBetween(*state.StreakStartedAt, *state.LastCheckinDate) + 1
	if days < 0 {
		return 0
	}
	return days
}

// startStreak 开启一段新连胜；已有进行中的连胜时不重置起点
func startStreak(state StreakState, now time.Time) StreakState {
	if state.StreakStartedAt != nil {
		return state
	}
	started := now
	state.StreakStartedAt = &started
	return state
}

// closeStreak 结算当前连胜：长度大于 0 时写入 LastStreakDays，
// 并在刷新纪录时抬高 BestStreakDays；随后清空起点。
// LastCheckinDate 保留不动，历史页仍需要展示最后一次打卡日。
func closeStreak(state StreakState) StreakState {
	current := CurrentStreakDays(state)
	if current > 0 {
		state.LastStreakDays = current
		if current > state.BestStreakDays {
			state.BestStreakDays = current
		}
	}
	state.StreakStartedAt = nil
	return state
}

// applyDailyCheckin 按序执行每日打卡的状态迁移：
// 当天已打卡 → 原样返回；从未开始 → 先开启；
// 距上次打卡超过 1 个日历日 → 结算旧连胜并当场重开；
// 最后无条件把 LastCheckinDate 写为今天。
// 隔 1 天的背靠背打卡视为连续，与 CurrentStreakDays 的含首尾口径一致。
func applyDailyCheckin(state StreakState, now time.Time) StreakState {
	today := normalizeDate(now)

	if state.LastCheckinDate != nil && normalizeDate(*state.LastCheckinDate).Equal(today) {
		return state
	}

	if state.StreakStartedAt == nil {
		state = startStreak(state, now)
	} else if state.LastCheckinDate != nil && daysBetween(*state.LastCheckinDate, today) > 1 {
		state = closeStreak(state)
		state = startStreak(state, now)
	}

	state.LastCheckinDate = &today
	return state
}

// StreakService 在纯函数状态机外包一层持久化适配
// now 可注入，测试时固定时钟即可覆盖全部日期边界
type StreakService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStreakService 构造 StreakService，默认取 UTC 当前时间
func NewStreakService(gdb *gorm.DB) *StreakService {
	return &StreakService{
		db:  gdb,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetNow 覆盖时钟来源，主要用于测试。
func (s *StreakService) SetNow(now func() time.Time) {
	if now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
		return
	}
	s.now = now
}

// Today 返回服务时钟口径下的当前 UTC 日期
func (s *StreakService) Today() time.Time {
	return normalizeDate(s.now())
}

func (s *StreakService) loadUser(userID uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func stateOf(user *db.User) StreakState {
	return StreakState{
		StreakStartedAt: user.StreakStartedAt,
		LastCheckinDate: user.LastCheckinDate,
		BestStreakDays:  user.BestStreakDays,
		LastStreakDays:  user.LastStreakDays,
	}
}

func (s *StreakService) saveState(user *db.User, state StreakState) error {
	user.StreakStartedAt = state.StreakStartedAt
	user.LastCheckinDate = state.LastCheckinDate
	user.BestStreakDays = state.BestStreakDays
	user.LastStreakDays = state.LastStreakDays

	if err := s.db.Model(user).Select(
		"streak_started_at", "last_checkin_date", "best_streak_days", "last_streak_days",
	).Updates(map[string]interface{}{
		"streak_started_at": user.StreakStartedAt,
		"last_checkin_date": user.LastCheckinDate,
		"best_streak_days":  user.BestStreakDays,
		"last_streak_days":  user.LastStreakDays,
	}).Error; err != nil {
		return fmt.Errorf("save streak state: %w", err)
	}
	return nil
}

func (s *StreakService) summarize(state StreakState) StreakSummary {
	summary := StreakSummary{
		CurrentDays:     CurrentStreakDays(state),
		BestDays:        state.BestStreakDays,
		LastDays:        state.LastStreakDays,
		StreakStartedAt: state.StreakStartedAt,
		LastCheckinDate: state.LastCheckinDate,
	}
	if state.LastCheckinDate != nil {
		summary.DoneToday = normalizeDate(*state.LastCheckinDate).Equal(normalizeDate(s.now()))
	}
	return summary
}

// Current 返回用户当前的连胜概览，不做任何写入
func (s *StreakService) Current(userID uint) (StreakSummary, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return StreakSummary{}, err
	}
	return s.summarize(stateOf(user)), nil
}

// Start 开启连胜；已有进行中的连胜时为无副作用操作
func (s *StreakService) Start(userID uint) (StreakSummary, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return StreakSummary{}, err
	}

	state := stateOf(user)
	next := startStreak(state, s.now())
	if next.StreakStartedAt != state.StreakStartedAt {
		if err := s.saveState(user, next); err != nil {
			return StreakSummary{}, err
		}
	}
	return s.summarize(next), nil
}

// Reset 主动结束连胜（例如用户自报复赌）并结算 best/last
func (s *StreakService) Reset(userID uint) (StreakSummary, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return StreakSummary{}, err
	}

	next := closeStreak(stateOf(user))
	if err := s.saveState(user, next); err != nil {
		return StreakSummary{}, err
	}
	return s.summarize(next), nil
}

// DailyCheckin 执行每日打卡并返回打卡后的连胜概览。
// 同一天重复打卡不产生写入；成功推进时同步落一条打卡日志供热力图使用。
func (s *StreakService) DailyCheckin(userID uint) (StreakSummary, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return StreakSummary{}, err
	}

	now := s.now()
	state := stateOf(user)
	today := normalizeDate(now)

	if state.LastCheckinDate != nil && normalizeDate(*state.LastCheckinDate).Equal(today) {
		return s.summarize(state), nil
	}

	next := applyDailyCheckin(state, now)
	if err := s.saveState(user, next); err != nil {
		return StreakSummary{}, err
	}

	record := db.CheckinLog{UserID: user.ID, LogDate: today, Source: "manual"}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return StreakSummary{}, fmt.Errorf("record checkin log: %w", err)
	}

	return s.summarize(next), nil
}

// CheckinHeatmapDay 表示热力图中的单日打卡情况
type CheckinHeatmapDay struct {
	Date    string `json:"date"`
	Checked bool   `json:"checked"`
}

// Heatmap 返回区间内每天的打卡情况，闭区间、按日排列
func (s *StreakService) Heatmap(userID uint, start, end time.Time) ([]CheckinHeatmapDay, error) {
	normalizedStart := normalizeDate(start)
	normalizedEnd := normalizeDate(end)
	if normalizedEnd.Before(normalizedStart) {
		return nil, fmt.Errorf("invalid range: end before start")
	}

	var logs []db.CheckinLog
	if err := s.db.Where("user_id = ?", userID).
		Where("log_date BETWEEN ? AND ?", normalizedStart, normalizedEnd).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list checkin logs: %w", err)
	}

	checked := make(map[string]bool, len(logs))
	for _, item := range logs {
		checked[normalizeDate(item.LogDate).Format("2006-01-02")] = true
	}

	days := make([]CheckinHeatmapDay, 0, daysBetween(normalizedStart, normalizedEnd)+1)
	for cursor := normalizedStart; !cursor.After(normalizedEnd); cursor = cursor.AddDate(0, 0, 1) {
		key := cursor.Format("2006-01-02")
		days = append(days, CheckinHeatmapDay{Date: key, Checked: checked[key]})
	}
	return days, nil
}
