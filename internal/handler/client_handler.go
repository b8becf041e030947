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

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	{
		clients.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.GetClients)
		clients.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.GetClient)
		clients.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.CreateClient)
		clients.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.UpdateClient)
		clients.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteClient)
	}
}

func (h *ClientHandler) GetClients(c *gin.Context) {
	params := pagination.Parse(c)

	clients, total, err := h.clientService.GetClients(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	// Client accounts may only read their own company record.
	if c.GetString("userRole") == model.RoleClient && c.GetString("clientID") != c.Param("id") {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "client deleted"}))
}
