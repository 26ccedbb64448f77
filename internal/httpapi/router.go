package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/insighthub/insight-platform/internal/analytics"
	"github.com/insighthub/insight-platform/internal/common"
	"github.com/insighthub/insight-platform/internal/config"
	"github.com/insighthub/insight-platform/internal/httpapi/handlers"
	"github.com/insighthub/insight-platform/internal/httpapi/middleware"
	"github.com/insighthub/insight-platform/internal/hub"
)

func NewRouter(cfg config.Config, svc *analytics.Service, h *hub.Hub, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST"}
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	hd := handlers.NewHandler(cfg, svc, h, log)

	r.GET("/ping", hd.Ping)
	r.GET("/ws", hd.InquiryFeed)

	api := r.Group("/api")
	api.POST("/sessions", hd.CreateSession)
	api.GET("/sessions/:session_id", hd.GetSession)
	api.POST("/sessions/:session_id/inquiries", hd.SubmitInquiry)
	api.GET("/inquiries/:inquiry_id", hd.GetInquiry)
	api.GET("/inquiries/:inquiry_id/stream", hd.StreamInquiryAnswer)

	return r
}
