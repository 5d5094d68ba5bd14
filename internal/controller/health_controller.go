package controller

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"course_exam_backend/pkg/database"
	"course_exam_backend/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthController 报告数据库、目录缓存状态以及评分进度
type HealthController struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Submissions *repository.SubmissionRepository
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, submissions *repository.SubmissionRepository) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Submissions: submissions}
}

// GradingStats 各状态提交数；inProgress 长时间不降说明有评分事务失败
type GradingStats struct {
	Graded     int64 `json:"graded"`
	InProgress int64 `json:"inProgress"`
	Submitted  int64 `json:"submitted"`
}

type HealthReport struct {
	Status          string            `json:"status"`
	Components      map[string]string `json:"components"`
	OpenConnections int               `json:"openConnections"`
	Grading         *GradingStats     `json:"grading,omitempty"`
}

// @Summary 健康检查
// @Description 数据库与缓存状态、评分计数。数据库不可用时返回 503，缓存故障只降级不报错
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response{data=controller.HealthReport}
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	sqlDB, err := c.DB.DB()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	pingCtx, cancel := context.WithTimeout(reqCtx, healthPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		logger.Log.Warn("health: database ping failed", zap.Error(err))
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Database unavailable", HealthReport{
			Status:     "down",
			Components: map[string]string{"database": "down"},
		})
		return
	}

	cache := "disabled"
	if c.Redis != nil {
		cache = "up"
		if err := database.PingRedis(reqCtx, c.Redis, healthPingTimeout); err != nil {
			logger.Log.Warn("health: redis ping failed", zap.Error(err))
			cache = "down"
		}
	}

	counts, err := c.Submissions.CountByStatus(reqCtx)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	report := HealthReport{
		Status: "ok",
		Components: map[string]string{
			"database": "up",
			"cache":    cache,
		},
		OpenConnections: sqlDB.Stats().OpenConnections,
		Grading: &GradingStats{
			Graded:     counts[model.StatusGraded],
			InProgress: counts[model.StatusInProgress],
			Submitted:  counts[model.StatusSubmitted],
		},
	}
	if cache == "down" {
		report.Status = "degraded"
	}
	util.Success(ctx, report)
}
