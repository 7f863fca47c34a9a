package outreach

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SendRequest optionally defers the delivery. An empty body sends now.
type SendRequest struct {
	SendAt *time.Time `json:"sendAt"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(leads *gin.RouterGroup) {
	leads.POST("/:id/outreach/send", h.send)
}

func (h *Handler) send(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.SendAt != nil {
		if err := h.service.Defer(c.Request.Context(), leadID, *req.SendAt); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true, "sendAt": req.SendAt})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusOK, msg)
}
