package calls

import (
	"net/http"

	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlaceCallRequest starts an outbound call to a lead.
type PlaceCallRequest struct {
	LeadID    uuid.UUID  `json:"leadId" binding:"required"`
	ProfileID *uuid.UUID `json:"profileId"`
}

// Handler exposes the call controller over HTTP.
type Handler struct {
	controller *Controller
}

func NewHandler(controller *Controller) *Handler {
	return &Handler{controller: controller}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.placeCall)
	group.POST("/hangup", h.hangup)
	group.GET("/status", h.status)
}

func (h *Handler) placeCall(c *gin.Context) {
	var req PlaceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snap, err := h.controller.PlaceCall(c.Request.Context(), req.LeadID, req.ProfileID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, snap)
}

func (h *Handler) hangup(c *gin.Context) {
	httpkit.OK(c, h.controller.Hangup(c.Request.Context()))
}

func (h *Handler) status(c *gin.Context) {
	httpkit.OK(c, h.controller.Status())
}
