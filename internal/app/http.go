package app

import (
	"context"

	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/neurobridge-ledger/internal/http"
	httpH "github.com/yungbote/neurobridge-ledger/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-ledger/internal/http/middleware"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health         *httpH.HealthHandler
	LearningRecord *httpH.LearningRecordHandler
	SignRecord     *httpH.SignRecordHandler
	Points         *httpH.PointsHandler
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, svcs.Auth)}
}

func wireHandlers(log *logger.Logger, clients Clients, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.HealthCheck{
		"db": func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return Handlers{
		Health:         httpH.NewHealthHandler(checks),
		LearningRecord: httpH.NewLearningRecordHandler(svcs.LearningRecord),
		SignRecord:     httpH.NewSignRecordHandler(svcs.SignRecord),
		Points:         httpH.NewPointsHandler(svcs.Points, svcs.PointsBoard),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,

		AuthMiddleware: middleware.Auth,

		LearningRecordHandler: handlers.LearningRecord,
		SignRecordHandler:     handlers.SignRecord,
		PointsHandler:         handlers.Points,

		HealthHandler: handlers.Health,
	})
}
