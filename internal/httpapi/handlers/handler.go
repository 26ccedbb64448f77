package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/insighthub/insight-platform/internal/analytics"
	"github.com/insighthub/insight-platform/internal/common"
	"github.com/insighthub/insight-platform/internal/config"
	"github.com/insighthub/insight-platform/internal/hub"
)

type Handler struct {
	Cfg config.Config
	Svc *analytics.Service
	Hub *hub.Hub
	Log *zap.Logger
}

func NewHandler(cfg config.Config, svc *analytics.Service, h *hub.Hub, log *zap.Logger) *Handler {
	return &Handler{Cfg: cfg, Svc: svc, Hub: h, Log: log}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}

// InquiryFeed upgrades the connection into the broadcast feed.
func (h *Handler) InquiryFeed(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}
