package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"stibap_portal/internal/config"
	"stibap_portal/internal/controller"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/service"
	"stibap_portal/pkg/configwatcher"
	"stibap_portal/pkg/database"
	"stibap_portal/pkg/logger"
	"stibap_portal/pkg/monitoring"
	"stibap_portal/pkg/security"
	"stibap_portal/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	Store           repository.KVRepository
	Gateway         *gateway.Client
	services        *services
	cron            *cron.Cron
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	notifier       *service.Notifier
	localStore     *service.LocalStoreService
	sessions       *service.SessionStore
	auth           *service.AuthService
	onboarding     *service.OnboardingService
	recommendation *service.RecommendationService
	outline        *service.OutlineService
	quiz           *service.QuizService
	admin          *service.AdminService
	catalog        *service.CatalogService
	progress       *service.ProgressService
}

type controllers struct {
	health     *controller.HealthController
	auth       *controller.AuthController
	catalog    *controller.CatalogController
	dashboard  *controller.DashboardController
	player     *controller.PlayerController
	onboarding *controller.OnboardingController
	quiz       *controller.QuizController
	admin      *controller.AdminController
}

// RegisterConfigCallback 注册配置更新回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// initStore 按 store.type 选择本地持久化后端
func initStore(ctx context.Context, cfg *config.Config) (repository.KVRepository, error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		return repository.NewMemoryKVRepository(), nil
	case config.StoreFile, "":
		return repository.NewFileKVRepository(cfg.Store.FilePath), nil
	case config.StoreRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisKVRepository(rdb, cfg.Store.KeyPrefix), nil
	case config.StoreMinio:
		client, err := database.InitMinio(ctx, &cfg.Minio)
		if err != nil {
			return nil, err
		}
		return repository.NewMinioKVRepository(client, cfg.Minio.Bucket, cfg.Store.KeyPrefix), nil
	case config.StoreMySQL:
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return repository.NewGormKVRepository(db, cfg.Store.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func (a *App) initServices(ctx context.Context, cfg *config.Config, store repository.KVRepository) *services {
	notifier := service.NewNotifier()
	localStore := service.NewLocalStoreService(store, notifier)

	sessions := service.NewSessionStore(store)
	if err := sessions.Load(ctx); err != nil {
		logger.L().Warn("Failed to load persisted session", zap.Error(err))
	}

	client := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), sessions)
	a.Gateway = client
	rpc := gateway.NewAuthRPC(cfg.AuthRPC.URL, cfg.AuthRPC.APIKey, cfg.AuthRPC.Timeout())

	auth := service.NewAuthService(rpc, sessions)
	topK := cfg.Backend.RecommendationsTopK

	return &services{
		notifier:       notifier,
		localStore:     localStore,
		sessions:       sessions,
		auth:           auth,
		onboarding:     service.NewOnboardingService(client),
		recommendation: service.NewRecommendationService(localStore, client, topK),
		outline:        service.NewOutlineService(client, localStore),
		quiz:           service.NewQuizService(client, localStore, topK),
		admin:          service.NewAdminService(client, auth),
		catalog:        service.NewCatalogService(client),
		progress:       service.NewProgressService(client),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		health:     controller.NewHealthController(a.Gateway),
		auth:       controller.NewAuthController(s.auth),
		catalog:    controller.NewCatalogController(s.catalog),
		dashboard:  controller.NewDashboardController(s.recommendation, s.progress),
		player:     controller.NewPlayerController(s.outline),
		onboarding: controller.NewOnboardingController(s.onboarding),
		quiz:       controller.NewQuizController(s.quiz),
		admin:      controller.NewAdminController(s.admin),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 启动时校验一次会话，之后按计划周期校验
func (a *App) startBackgroundTasks(s *services) {
	timeout := a.Config.AuthRPC.Timeout() + time.Second
	verify := func(trigger string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		user, err := s.auth.VerifySession(ctx)
		if err != nil {
			logger.L().Warn("Session verification failed", zap.String("trigger", trigger), zap.Error(err))
			return
		}
		if user != nil {
			logger.L().Debug("Session verified", zap.String("trigger", trigger), zap.String("user_id", user.ID))
		}
	}

	go verify("startup")

	a.cron = cron.New()
	if _, err := a.cron.AddFunc(a.Config.Session.VerifySchedule, func() { verify("schedule") }); err != nil {
		logger.L().Error("Invalid session verify schedule",
			zap.String("schedule", a.Config.Session.VerifySchedule), zap.Error(err))
		return
	}
	a.cron.Start()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	// 监控初始化
	monitoring.Init()

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("stibap-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.L().Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	ctx := context.Background()
	store, err := initStore(ctx, cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize local store",
			zap.String("type", cfg.Store.Type), zap.Error(err))
	}
	app.Store = store

	services := app.initServices(ctx, cfg, store)
	app.services = services
	controllers := app.initControllers(services)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services)

	app.RegisterConfigCallback(logger.SetLevel)
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		if newCfg.Backend.BaseURL != app.Gateway.BaseURL() {
			logger.L().Info("Backend base URL changed", zap.String("base_url", newCfg.Backend.BaseURL))
			app.Gateway.SetBaseURL(newCfg.Backend.BaseURL)
		}
	})

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.L().Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	done := make(chan struct{})
	if a.ConfigDir != "" {
		go func() {
			file := filepath.Join(a.ConfigDir, "config.yaml")
			if err := configwatcher.WatchConfig(file, a.applyConfig, done); err != nil {
				logger.L().Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("Shutting down server...")
	close(done)

	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.L().Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.L().Info("Server exiting")
}
