package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/insighthub/insight-platform/internal/analytics"
	"github.com/insighthub/insight-platform/internal/common"
)

type submitInquiryReq struct {
	Question string `json:"question"`
}

// SubmitInquiry accepts a question, stores the inquiry and returns 202
// immediately; processing happens in the background pipeline.
func (h *Handler) SubmitInquiry(c *gin.Context) {
	var req submitInquiryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	inq, err := h.Svc.CreateInquiry(c.Request.Context(), c.Param("session_id"), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidInput):
			common.Fail(c, http.StatusBadRequest, 10002, "question is required")
		case errors.Is(err, analytics.ErrNotFound):
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
		default:
			h.Log.Error("submit inquiry failed", zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	common.JSON(c, http.StatusAccepted, gin.H{"inquiry_id": inq.ID})
}

func (h *Handler) GetInquiry(c *gin.Context) {
	inq, err := h.Svc.GetInquiry(c.Request.Context(), c.Param("inquiry_id"))
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "inquiry not found")
			return
		}
		h.Log.Error("get inquiry failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, inq)
}

// StreamInquiryAnswer replays a completed inquiry's narrative character by
// character over a chunked plain-text response.
func (h *Handler) StreamInquiryAnswer(c *gin.Context) {
	id := c.Param("inquiry_id")
	ctx := c.Request.Context()

	chars, err := h.Svc.StreamAnswer(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrNotFound):
			common.Fail(c, http.StatusNotFound, 40402, "inquiry not found")
		case errors.Is(err, analytics.ErrNotReady):
			common.Fail(c, http.StatusConflict, 40901, "inquiry processing not complete")
		default:
			h.Log.Error("stream answer failed", zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.Log.Warn("response writer does not support flushing, stream aborted")
		return
	}

	h.Log.Info("answer stream started", zap.String("inquiry_id", id))
	sent := 0
	for {
		select {
		case s, open := <-chars:
			if !open {
				h.Log.Info("answer stream completed",
					zap.String("inquiry_id", id),
					zap.Int("chars", sent),
				)
				return
			}
			if _, err := io.WriteString(c.Writer, s); err != nil {
				return
			}
			sent++
			flusher.Flush()

		case <-ctx.Done():
			// Consumer went away; the producer sees the same ctx and
			// releases its timer.
			h.Log.Info("answer stream canceled",
				zap.String("inquiry_id", id),
				zap.Int("chars", sent),
			)
			return
		}
	}
}
