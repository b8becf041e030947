package handler

import (
	"net/http"

	"rentalportal/internal/middleware"
	"rentalportal/internal/model"
	"rentalportal/internal/service"
	"rentalportal/internal/status"
	"rentalportal/pkg/pagination"
	"rentalportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type EntityHandler struct {
	lifecycleService service.LifecycleService
	quoteService     service.QuoteService
}

func NewEntityHandler(lifecycleService service.LifecycleService, quoteService service.QuoteService) *EntityHandler {
	return &EntityHandler{lifecycleService: lifecycleService, quoteService: quoteService}
}

func (h *EntityHandler) RegisterRoutes(router *gin.RouterGroup) {
	entities := router.Group("/api/entities")
	{
		entities.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.ListEntities)
		entities.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.GetEntity)
		entities.POST("/:id/transitions", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.Transition)
		entities.PUT("/:id/quote", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.SetQuote)
		entities.POST("/:id/quote-decision", middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient), h.SubmitQuoteDecision)
	}
}

type transitionRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// ListEntities returns paginated entities, optionally filtered by kind
// @Summary      List entities
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        kind   query  string  false  "Filter by kind (ORDER, INBOUND_REQUEST, SERVICE_REQUEST)"
// @Param        page   query  int     false  "Page number (default 1)"
// @Param        limit  query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/entities [get]
func (h *EntityHandler) ListEntities(c *gin.Context) {
	params := pagination.Parse(c)
	kind := c.Query("kind")

	entities, total, err := h.lifecycleService.ListEntities(c.Request.Context(), kind, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"entities": entities,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetEntity returns one entity with its full status history
// @Summary      Get entity
// @Tags         entities
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Entity ID"
// @Success      200  {object}  response.Response{data=service.EntityResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/entities/{id} [get]
func (h *EntityHandler) GetEntity(c *gin.Context) {
	entity, err := h.lifecycleService.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		code := httpStatusFor(err)
		if code == http.StatusInternalServerError {
			code = http.StatusNotFound
		}
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

// Transition applies a lifecycle action to an entity
// @Summary      Apply a lifecycle action
// @Description  Validates the action against the status catalog and applies it atomically
// @Tags         entities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Entity ID"
// @Param        payload  body  transitionRequest  true  "Action"
// @Success      200  {object}  response.Response{data=service.EntityResponse}
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/entities/{id}/transitions [post]
func (h *EntityHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor := actorFrom(c)
	entity, err := h.lifecycleService.Transition(c.Request.Context(), c.Param("id"), status.Action(req.Action), actor, req.Note)
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

// SetQuote attaches staff pricing to an entity and moves it to QUOTED
func (h *EntityHandler) SetQuote(c *gin.Context) {
	var req service.SetQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entity, err := h.quoteService.SetQuote(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

// SubmitQuoteDecision records an approve/decline/request-revision decision
// @Summary      Decide on a quote
// @Tags         entities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Entity ID"
// @Param        payload  body  service.QuoteDecisionRequest  true  "Decision"
// @Success      200  {object}  response.Response{data=service.EntityResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/entities/{id}/quote-decision [post]
func (h *EntityHandler) SubmitQuoteDecision(c *gin.Context) {
	var req service.QuoteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entity, err := h.quoteService.SubmitQuoteDecision(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entity))
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString("userID"),
		Role: c.GetString("userRole"),
	}
}
