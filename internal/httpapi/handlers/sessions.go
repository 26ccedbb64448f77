package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/insighthub/insight-platform/internal/analytics"
	"github.com/insighthub/insight-platform/internal/common"
)

func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.Svc.CreateSession(c.Request.Context())
	if err != nil {
		h.Log.Error("create session failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}
	common.JSON(c, http.StatusCreated, gin.H{"session_id": sess.SessionID})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.Svc.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		h.Log.Error("get session failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, sess)
}
