package inbox

import (
	"net/http"

	"github.com/devvault2026/revampai/internal/leads/domain"
	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecordMessageRequest appends one conversation entry to a lead.
type RecordMessageRequest struct {
	Direction string `json:"direction" binding:"required,oneof=in out"`
	Sender    string `json:"sender"`
	Content   string `json:"content" binding:"required"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(leads, messages *gin.RouterGroup) {
	leads.POST("/:id/messages", h.recordMessage)
	messages.POST("/:id/read", h.markRead)
}

func (h *Handler) recordMessage(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	var req RecordMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var msg domain.Message
	switch req.Direction {
	case domain.MessageDirectionOutbound:
		msg, err = h.service.RecordOutbound(c.Request.Context(), leadID, req.Sender, req.Content)
	default:
		msg, err = h.service.RecordInbound(c.Request.Context(), leadID, req.Sender, req.Content)
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, msg)
}

func (h *Handler) markRead(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid message id", nil)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), messageID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, "message marked as read")
}
