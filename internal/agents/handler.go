package agents

import (
	"net/http"

	"github.com/devvault2026/revampai/internal/agents/domain"
	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testRequest struct {
	Input string `json:"input" binding:"required"`
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
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.remove)
	group.POST("/:id/test", h.test)
}

func (h *Handler) list(c *gin.Context) {
	profiles, err := h.service.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"profiles": profiles})
}

func (h *Handler) create(c *gin.Context) {
	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), profile)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, created)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	profile, err := h.service.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}

	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	profile.ID = id

	updated, err := h.service.Update(c.Request.Context(), profile)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, updated)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.service.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) test(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}

	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reply, err := h.service.TestPersona(c.Request.Context(), id, req.Input)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reply": reply})
}

func (h *Handler) profileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid profile id", nil)
		return uuid.Nil, false
	}
	return id, true
}
