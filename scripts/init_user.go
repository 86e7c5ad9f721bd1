package main

import (
	"fmt"
	"log"

	"github.com/quitbet/internal/config"
	"github.com/quitbet/internal/db"
)

func main() {
	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	// 检查是否已存在用户
	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	// 创建默认测试用户
	if err := db.EnsureUser("测试用户", "demo@quitbet.dev", "demo123"); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("默认用户创建成功")
	fmt.Println("邮箱: demo@quitbet.dev")
	fmt.Println("密码: demo123")
}
