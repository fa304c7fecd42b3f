package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-ledger/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-ledger/internal/http/middleware"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	MaxBodyBytes   int64

	AuthMiddleware *httpMW.AuthMiddleware

	LearningRecordHandler *httpH.LearningRecordHandler
	SignRecordHandler     *httpH.SignRecordHandler
	PointsHandler         *httpH.PointsHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck"))
	r.Use(httpMW.AttachRequestContext(cfg.MaxBodyBytes))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Learning records
		if cfg.LearningRecordHandler != nil {
			protected.POST("/learning-records", cfg.LearningRecordHandler.AddLearningRecord)
			protected.GET("/learning-records/course/:courseId", cfg.LearningRecordHandler.QueryLearningRecords)
		}

		// Sign-in
		if cfg.SignRecordHandler != nil {
			protected.POST("/sign-records", cfg.SignRecordHandler.AddSignRecord)
			protected.GET("/sign-records", cfg.SignRecordHandler.QuerySignRecords)
		}

		// Points
		if cfg.PointsHandler != nil {
			protected.GET("/points/today", cfg.PointsHandler.QueryMyPointsToday)
			protected.GET("/boards", cfg.PointsHandler.QueryBoard)
		}
	}

	return r
}
