package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quitbet/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.Default()

	// 插件与网页客户端跨域调用 API，放行 Authorization 头
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	// 注册与登录无需认证
	auth := r.Group("/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
	}

	// 业务 API 统一走 Bearer 认证
	apiGroup := r.Group("/api")
	apiGroup.Use(api.AuthRequired())
	{
		apiGroup.GET("/users/me", api.Me)
		apiGroup.PUT("/users/me/email", api.ChangeEmail)
		apiGroup.PUT("/users/me/password", api.ChangePassword)

		apiGroup.GET("/streak", api.GetStreak)
		apiGroup.POST("/streak/start", api.StartStreak)
		apiGroup.POST("/streak/reset", api.ResetStreak)
		apiGroup.POST("/streak/checkin", api.StreakCheckin)
		apiGroup.GET("/streak/heatmap", api.GetStreakHeatmap)

		apiGroup.GET("/sites", api.ListSites)
		apiGroup.POST("/sites", api.CreateSite)
		apiGroup.PUT("/sites/:id", api.UpdateSite)
		apiGroup.DELETE("/sites/:id", api.DeleteSite)

		apiGroup.GET("/attempts", api.ListAttempts)
		apiGroup.POST("/attempts", api.RecordAttempt)

		apiGroup.GET("/journal", api.ListJournalEntries)
		apiGroup.POST("/journal", api.CreateJournalEntry)

		apiGroup.POST("/counseling/chat", api.Counsel)
		apiGroup.GET("/counseling/emergency-advice", api.EmergencyAdvice)

		apiGroup.GET("/emergency/contacts", api.ListEmergencyContacts)
		apiGroup.POST("/emergency/contacts", api.AddEmergencyContact)
		apiGroup.DELETE("/emergency/contacts/:id", api.DeleteEmergencyContact)
		apiGroup.POST("/emergency/alert", api.TriggerEmergencyAlert)

		apiGroup.GET("/challenges/catalog", api.ListChallengeCatalog)
		apiGroup.POST("/challenges/catalog", api.CreateChallengeTemplate)
		apiGroup.GET("/challenges", api.ListMyChallenges)
		apiGroup.POST("/challenges", api.CreateChallenge)
		apiGroup.POST("/challenges/:id/start", api.StartChallenge)
		apiGroup.POST("/challenges/:id/abandon", api.AbandonChallenge)
		apiGroup.POST("/challenges/:id/complete", api.CompleteChallenge)
		apiGroup.POST("/challenges/:id/checkin", api.ChallengeCheckin)

		apiGroup.GET("/triggers", api.ListTriggers)
		apiGroup.POST("/triggers", api.CreateTrigger)
		apiGroup.PUT("/triggers/:id", api.UpdateTrigger)
		apiGroup.DELETE("/triggers/:id", api.DeleteTrigger)
		apiGroup.GET("/triggers/active", api.ListActiveTriggers)

		apiGroup.GET("/detox-plans", api.ListDetoxPlans)
		apiGroup.POST("/detox-plans", api.CreateDetoxPlan)
		apiGroup.PUT("/detox-plans/:id", api.UpdateDetoxPlan)
		apiGroup.DELETE("/detox-plans/:id", api.DeleteDetoxPlan)

		admin := apiGroup.Group("/admin")
		{
			admin.GET("/settings", api.GetSystemSettings)
			admin.PUT("/settings", api.UpdateSystemSettings)
			admin.POST("/settings/ai-test", api.TestAIConnection)
		}
	}

	return r
}
