package handler

import (
	"net/http"

	"rentalportal/internal/middleware"
	"rentalportal/internal/model"
	"rentalportal/internal/service"
	"rentalportal/pkg/pagination"
	"rentalportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
}

func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	tiers := router.Group("/api/pricing-tiers")
	tiers.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	{
		tiers.GET("", h.ListTiers)
		tiers.POST("", h.CreateTier)
		tiers.PUT("/:id", h.UpdateTier)
		tiers.DELETE("/:id", h.DeleteTier)
	}
}

// ListTiers returns destination pricing tiers ordered by country
func (h *PricingHandler) ListTiers(c *gin.Context) {
	params := pagination.Parse(c)

	tiers, total, err := h.pricingService.ListTiers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"tiers": tiers,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

func (h *PricingHandler) CreateTier(c *gin.Context) {
	var req service.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tier, err := h.pricingService.CreateTier(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tier))
}

func (h *PricingHandler) UpdateTier(c *gin.Context) {
	var req service.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tier, err := h.pricingService.UpdateTier(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tier))
}

func (h *PricingHandler) DeleteTier(c *gin.Context) {
	if err := h.pricingService.DeleteTier(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "pricing tier deleted"}))
}
