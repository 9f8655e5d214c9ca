package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"timetrack/backend/config"
	"timetrack/backend/internal/api/handler"
	"timetrack/backend/internal/api/router"
	"timetrack/backend/internal/repository"
	"timetrack/backend/internal/service"
	"timetrack/backend/pkg/database"
	"timetrack/backend/pkg/jwt"
	applogger "timetrack/backend/pkg/logger"
	"timetrack/backend/pkg/mq"
	"timetrack/backend/pkg/redis"
	"timetrack/backend/pkg/validate"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	migrateDown := flag.Bool("migrate-down", false, "回滚最近一次数据库迁移后退出")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Attendance.Timezone),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if *migrateDown {
		if err := database.RollbackLast(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移回滚失败", zap.Error(err))
		}
		return
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 注册参数校验标签与中文翻译
	if err := validate.Setup(); err != nil {
		logger.Fatal("初始化参数校验失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var deps service.Deps
	notifiers := []service.ChangeNotifier{}

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与工时缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Blacklist = rdb
		deps.Cache = rdb
		notifiers = append(notifiers, service.NewCacheInvalidator(rdb, logger))
	}

	// 6. 连接 RabbitMQ（可选）
	var publisher *mq.Publisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = mq.NewPublisher(&cfg.RabbitMQ, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，变更事件将不会发布", zap.Error(err))
			publisher = nil
		} else {
			notifiers = append(notifiers, service.NewEventNotifier(publisher))
		}
	}
	deps.Notifier = service.NewMultiNotifier(logger, notifiers...)

	// 7. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 8. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, applogger.ForModule(logger, "service"))
	h := handler.NewHandler(svc)

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, applogger.ForModule(logger, "http"))

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // 导出文件生成耗时较长
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭消息队列连接
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭 RabbitMQ 连接失败", zap.Error(err))
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	// 关闭数据库连接
	sqlDB.Close()

	logger.Info("服务器已关闭")
}
