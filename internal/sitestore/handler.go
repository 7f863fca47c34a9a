package sitestore

import (
	"net/http"

	"github.com/devvault2026/revampai/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(leads *gin.RouterGroup) {
	leads.GET("/:id/site/share", h.share)
	leads.GET("/:id/site/share/qr", h.shareQR)
}

func (h *Handler) share(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	link, err := h.service.Share(c.Request.Context(), leadID, c.Query("page"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusOK, link)
}

func (h *Handler) shareQR(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	png, err := h.service.ShareQR(c.Request.Context(), leadID, c.Query("page"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
