package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	auth       *service.AuthService
	users      *service.UserService
	streaks    *service.StreakService
	sites      *service.SiteService
	attempts   *service.AttemptService
	journal    *service.JournalService
	counseling service.Counselor
	emergency  *service.EmergencyService
	challenges *service.ChallengeService
	triggers   *service.TriggerService
	detox      *service.DetoxService
	system     *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, jwtSecret string, mailer service.Mailer) *API {
	systemService := service.NewSystemSettingService(gdb)
	counselingService := service.NewAICounselingService(systemService)
	journalAnalyzer := service.NewAIJournalService(systemService)

	return &API{
		db:         gdb,
		auth:       service.NewAuthService(gdb, jwtSecret),
		users:      service.NewUserService(gdb, mailer),
		streaks:    service.NewStreakService(gdb),
		sites:      service.NewSiteService(gdb),
		attempts:   service.NewAttemptService(gdb, mailer),
		journal:    service.NewJournalService(gdb, journalAnalyzer),
		counseling: counselingService,
		emergency:  service.NewEmergencyService(gdb, mailer),
		challenges: service.NewChallengeService(gdb),
		triggers:   service.NewTriggerService(gdb),
		detox:      service.NewDetoxService(gdb),
		system:     systemService,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Streaks 暴露连胜服务，供测试注入固定时钟
func (a *API) Streaks() *service.StreakService {
	return a.streaks
}

func currentUserID(c *gin.Context) uint {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}
