package app

import (
	"context"
	"course_exam_backend/internal/config"
	"course_exam_backend/internal/controller"
	"course_exam_backend/internal/middleware"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/service"
	"course_exam_backend/pkg/configwatcher"
	"course_exam_backend/pkg/database"
	"course_exam_backend/pkg/logger"
	"course_exam_backend/pkg/monitoring"
	"course_exam_backend/pkg/security"
	"course_exam_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Origins         *security.OriginPolicy
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	submission *repository.SubmissionRepository
	cache      *repository.CatalogCache
}

type services struct {
	auth      *service.AuthService
	catalog   *service.CatalogService
	grading   *service.GradingService
	result    *service.ResultService
	authoring *service.AuthoringService
	archive   *service.ArchiveService
	seed      *service.SeedService
}

type controllers struct {
	auth      *controller.AuthController
	catalog   *controller.CatalogController
	exam      *controller.ExamController
	authoring *controller.AuthoringController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		submission: repository.NewSubmissionRepository(db),
		cache:      repository.NewCatalogCache(rdb, a.Config.CatalogCacheTTL()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.catalog = service.NewCatalogService(repos.course, repos.cache)
	s.result = service.NewResultService(repos.submission)

	archive, err := service.NewArchiveService(cfg, s.result)
	if err != nil {
		logger.Log.Error("result archive disabled", zap.Error(err))
	}
	s.archive = archive

	s.grading = service.NewGradingService(db, repos.course, repos.submission, s.archive)
	s.authoring = service.NewAuthoringService(repos.course, repos.submission, repos.cache)
	s.seed = service.NewSeedService(repos.course, repos.user, repos.cache)

	return s
}

func (a *App) initControllers(repos *repositories, s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		catalog:   controller.NewCatalogController(s.catalog),
		exam:      controller.NewExamController(s.grading, s.result),
		authoring: controller.NewAuthoringController(s.authoring),
		health:    controller.NewHealthController(db, a.Redis, repos.submission),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.AccessLog())
	router.Use(security.CORS(a.Origins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 组装路由与依赖，不负责打开数据库连接
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Origins: security.NewOriginPolicy(cfg.CORS.AllowedOrigins),
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg, db)
	controllers := app.initControllers(repos, app.services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Origins.Update(newCfg.CORS.AllowedOrigins)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := Build(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, &cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// Seed 写入示例课程与测试账号
func (a *App) Seed(ctx context.Context) error {
	return a.services.seed.Seed(ctx)
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.FilePath, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
