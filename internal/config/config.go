package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
// 配置在进程启动时构造一次，随后以显式注入方式传递，不做全局可变状态。
type AppConfig struct {
	ListenAddr   string
	Port         string
	DatabasePath string
	JWTSecret    string
	GinMode      string
	AWSRegion    string
	MailFrom     string
	MailFromName string
	SiteBaseURL  string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "quitbet.db"
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		jwtSecret = "quitbet-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	awsRegion := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if awsRegion == "" {
		awsRegion = "ap-southeast-1"
	}

	mailFromName := strings.TrimSpace(os.Getenv("MAIL_FROM_NAME"))
	if mailFromName == "" {
		mailFromName = "QuitBet"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "https://app.quitbet.dev"
	}

	return AppConfig{
		ListenAddr:   listenAddr,
		Port:         port,
		DatabasePath: databasePath,
		JWTSecret:    jwtSecret,
		GinMode:      ginMode,
		AWSRegion:    awsRegion,
		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
		MailFromName: mailFromName,
		SiteBaseURL:  siteBaseURL,
	}
}
