package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/quitbet/internal/config"
	"github.com/quitbet/internal/db"
	"github.com/quitbet/internal/handler"
	"github.com/quitbet/internal/router"
	"github.com/quitbet/internal/service"
)

func main() {
	// 本地开发从 .env 读配置，线上环境直接用环境变量
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 未配置发件人时邮件服务自动降级为不发送
	mailer, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.MailFrom, cfg.MailFromName, cfg.SiteBaseURL)
	if err != nil {
		log.Fatalf("failed to initialize mailer: %v", err)
	}
	if !mailer.Enabled() {
		log.Println("MAIL_FROM 未配置，邮件提醒已停用")
	}

	api := handler.NewAPI(db.DB, cfg.JWTSecret, mailer)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
