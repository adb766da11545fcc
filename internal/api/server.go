package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/config"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dsn"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/handler"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/lifecycle"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/middleware"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/redis"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/repository"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/returnflow"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/storage"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/pkg"
)

// StartServer собирает все зависимости и запускает HTTP сервер
func StartServer() {
	logrus.Info("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal("ошибка загрузки конфигурации: ", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatal("ошибка инициализации репозитория: ", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logrus.Fatal("ошибка подключения к Redis: ", err)
	}

	minioClient, err := storage.NewMinIOClient(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	if err != nil {
		logrus.Fatal("ошибка подключения к MinIO: ", err)
	}

	// Ядро: state machine, расчёт стоимости, платежи, клиентский сценарий
	costs := billing.NewCostCache(30 * time.Second)
	lc := lifecycle.NewManager(repo, costs)
	ledger := billing.NewLedger(repo, lc, costs)
	protocol := returnflow.NewProtocol(lc, ledger)

	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, minioClient, lc, ledger, protocol, authHandler)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	r := gin.Default()

	// CORS для фронтенда и клиентского приложения
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiHandler.RegisterAPIRoutes(r, authMiddleware)

	// Swagger документация
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	app := pkg.NewApp(cfg, r)
	app.RunApp()

	logrus.Info("Server down")
}
