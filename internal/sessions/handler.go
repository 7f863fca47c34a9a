package sessions

import (
	"net/http"

	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createRequest struct {
	Name string `json:"name" binding:"required"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.list)
	group.POST("", h.create)
	group.POST("/:sessionId/activate", h.activate)
	group.DELETE("/:sessionId", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"sessions": sessions})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.service.Create(c.Request.Context(), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, session)
}

func (h *Handler) activate(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.service.Activate(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.service.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return uuid.Nil, false
	}
	return id, true
}
