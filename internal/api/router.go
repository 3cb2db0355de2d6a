package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/fer/internal/api/handlers"
	"github.com/your-org/fer/internal/api/ws"
	"github.com/your-org/fer/internal/auth"
)

// ObjectStore serves stored uploads and reports its health.
type ObjectStore interface {
	handlers.ImageReader
	handlers.ContextPinger
}

type RouterConfig struct {
	APIKey         string
	MaxUploadBytes int64
	Service        handlers.Submitter
	DB             interface {
		handlers.SubmissionReader
		handlers.ContextPinger
	}
	MinIO    ObjectStore
	Producer handlers.Pinger // nil when NATS is disabled
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.SetHTMLTemplate(handlers.Templates())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	subH := handlers.NewSubmissionHandler(cfg.Service, cfg.DB, cfg.MinIO, cfg.MaxUploadBytes)
	upload := BodyLimitMiddleware(cfg.MaxUploadBytes)

	// Browser form (no auth)
	webH := handlers.NewWebHandler(subH)
	r.GET("/", webH.Index)
	r.POST("/submit", upload, webH.Submit)

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	v1.GET("/ws", cfg.Hub.HandleWS)

	v1.POST("/submissions", upload, subH.Create)
	v1.GET("/submissions/:id", subH.Get)
	v1.GET("/submissions/:id/image", subH.Image)
	v1.POST("/predict", upload, subH.Predict)

	return r
}
