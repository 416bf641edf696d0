package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/dto"
	"github.com/openpress/blogcms/internal/service"
)

type SiteConfigHandler struct {
	siteConfig *service.SiteConfigService
}

func NewSiteConfigHandler(siteConfig *service.SiteConfigService) *SiteConfigHandler {
	return &SiteConfigHandler{siteConfig: siteConfig}
}

func (h *SiteConfigHandler) GetHome(c *gin.Context) {
	cfg, err := h.siteConfig.GetHome(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Home config fetched successfully", "config": cfg})
}

func (h *SiteConfigHandler) GetAbout(c *gin.Context) {
	cfg, err := h.siteConfig.GetAbout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "About config fetched successfully", "config": cfg})
}

func (h *SiteConfigHandler) GetContact(c *gin.Context) {
	cfg, err := h.siteConfig.GetContact(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact config fetched successfully", "config": cfg})
}

func (h *SiteConfigHandler) UpdateHome(c *gin.Context) {
	var req dto.UpdateHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	if err := h.siteConfig.UpdateHome(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Home config updated successfully"))
}

func (h *SiteConfigHandler) UpdateAbout(c *gin.Context) {
	var req dto.UpdateAboutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	if err := h.siteConfig.UpdateAbout(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("About config updated successfully"))
}

func (h *SiteConfigHandler) UpdateContact(c *gin.Context) {
	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	if err := h.siteConfig.UpdateContact(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Contact config updated successfully"))
}
