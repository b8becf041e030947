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

type AssetHandler struct {
	assetService service.AssetService
}

func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/api/assets")
	{
		assets.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.GetAssets)
		assets.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.GetAsset)
		assets.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.CreateAsset)
		assets.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.UpdateAsset)
		assets.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteAsset)
		assets.POST("/:id/adjust-stock", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.AdjustStock)
	}
}

// GetAssets returns the paginated asset catalog
// @Summary      List assets
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 20)"
// @Param        search  query  string  false  "Search by asset name"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/assets [get]
func (h *AssetHandler) GetAssets(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	assets, total, err := h.assetService.GetAssets(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve assets: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"assets": assets,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, asset))
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req service.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAsset(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.assetService.DeleteAsset(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "asset deleted"}))
}

// AdjustStock applies a manual stock correction and records a movement
// @Summary      Adjust stock
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Asset ID"
// @Param        payload  body  service.AdjustStockRequest  true  "Delta and reason"
// @Success      200  {object}  response.Response{data=service.AssetResponse}
// @Router       /api/assets/{id}/adjust-stock [post]
func (h *AssetHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.AdjustStock(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}
