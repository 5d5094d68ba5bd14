// @title Course Exam 后端 API
// @version 1.0
// @description 课程、课时考试与自动评分服务。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"course_exam_backend/internal/app"
	"course_exam_backend/internal/config"
	"course_exam_backend/pkg/logger"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	seed := flag.Bool("seed", false, "写入示例课程和测试账号（可重复执行）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly
	cfg.Seed = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if cfg.MigrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	if cfg.Seed {
		if err := application.Seed(context.Background()); err != nil {
			logger.Log.Fatal("Failed to seed sample data", zap.Error(err))
		}
	}

	application.Run()
}
