// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"github.com/devvault2026/revampai/internal/leads/lifecycle"
	"github.com/devvault2026/revampai/internal/leads/repository"
	"github.com/devvault2026/revampai/internal/leads/transport"
	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	controller *lifecycle.Controller
	repo       *repository.Repository
}

func New(controller *lifecycle.Controller, repo *repository.Repository) *Handler {
	return &Handler{controller: controller, repo: repo}
}

// RegisterRoutes mounts the lead lifecycle endpoints.
func (h *Handler) RegisterRoutes(sessions, leads *gin.RouterGroup) {
	sessions.POST("/:sessionId/leads/scout", h.scout)
	sessions.GET("/:sessionId/leads", h.listBySession)

	leads.GET("/:id", h.get)
	leads.POST("/:id/deep-dive", h.deepDive)
	leads.POST("/:id/strategy", h.generateStrategy)
	leads.POST("/:id/site", h.buildSite)
	leads.POST("/:id/pipeline", h.runFullPipeline)
	leads.POST("/:id/site/pages/:page/edit", h.editSitePage)
	leads.GET("/:id/calls", h.listCalls)
	leads.GET("/:id/messages", h.listMessages)
}

func (h *Handler) scout(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	var req transport.ScoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	leads, err := h.controller.Scout(c.Request.Context(), sessionID, req.Niche, req.Location, req.BatchSize, req.Mode)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"leads": leads})
}

func (h *Handler) listBySession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	leads, err := h.repo.ListBySession(c.Request.Context(), sessionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leads": leads})
}

func (h *Handler) get(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), leadID)
	if err == repository.ErrNotFound {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) deepDive(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.controller.DeepDive(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) generateStrategy(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}
	req, ok := h.stageRequest(c)
	if !ok {
		return
	}

	lead, err := h.controller.GenerateStrategy(c.Request.Context(), leadID, req.ProfileID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) buildSite(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}
	req, ok := h.stageRequest(c)
	if !ok {
		return
	}

	lead, err := h.controller.BuildSite(c.Request.Context(), leadID, req.ProfileID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) runFullPipeline(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}
	req, ok := h.stageRequest(c)
	if !ok {
		return
	}

	lead, err := h.controller.RunFullPipeline(c.Request.Context(), leadID, req.ProfileID)
	if err != nil {
		// The chain aborted but earlier stages' progress is retained;
		// return the last good state alongside the failure.
		if domainErr, isTyped := err.(interface{ HTTPStatus() int }); isTyped {
			httpkit.JSON(c, domainErr.HTTPStatus(), gin.H{"error": err.Error(), "lead": lead})
			return
		}
		httpkit.JSON(c, http.StatusBadGateway, gin.H{"error": err.Error(), "lead": lead})
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) editSitePage(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.EditPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	pageName := c.Param("page")
	html, err := h.controller.EditSitePage(c.Request.Context(), leadID, pageName, req.Instruction, req.ProfileID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.EditPageResponse{PageName: pageName, HTML: html})
}

func (h *Handler) listCalls(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	logs, err := h.repo.ListCallLogs(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"calls": logs})
}

func (h *Handler) listMessages(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"messages": messages})
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// stageRequest tolerates an empty body: every stage can run with the
// default persona.
func (h *Handler) stageRequest(c *gin.Context) (transport.StageRequest, bool) {
	var req transport.StageRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	return req, true
}
