package handler

import (
	"net/http"
	"time"

	"rentalportal/internal/middleware"
	"rentalportal/internal/model"
	"rentalportal/internal/service"
	"rentalportal/pkg/response"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutService     service.CheckoutService
	availabilityService service.AvailabilityService
	feasibilityService  service.FeasibilityService
	pricingService      service.PricingService
}

func NewCheckoutHandler(
	checkoutService service.CheckoutService,
	availabilityService service.AvailabilityService,
	feasibilityService service.FeasibilityService,
	pricingService service.PricingService,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:     checkoutService,
		availabilityService: availabilityService,
		feasibilityService:  feasibilityService,
		pricingService:      pricingService,
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/api/checkout")
	checkout.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient))
	{
		checkout.POST("/validate-availability", h.ValidateAvailability)
		checkout.POST("/check-feasibility", h.CheckFeasibility)
		checkout.POST("/estimate", h.Estimate)
		checkout.POST("/submit", h.Submit)
	}
}

type availabilityRequest struct {
	Items []service.AvailabilityItem `json:"items" binding:"required,min=1,dive"`
}

type feasibilityRequest struct {
	Items          []service.FeasibilityItem `json:"items" binding:"required,min=1,dive"`
	EventStartDate string                    `json:"event_start_date" binding:"required"` // YYYY-MM-DD
}

// ValidateAvailability re-checks cart quantities against live stock
// @Summary      Validate cart availability
// @Description  Returns one issue string per unavailable or short-stocked item
// @Tags         checkout
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  availabilityRequest  true  "Cart items"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/checkout/validate-availability [post]
func (h *CheckoutHandler) ValidateAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	issues, err := h.availabilityService.ValidateAvailability(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"ok":     len(issues) == 0,
		"issues": issues,
	}))
}

// CheckFeasibility runs the speculative refurbishment-schedule check
// @Summary      Check maintenance feasibility
// @Description  Flags FIX_IN_ORDER items whose refurbishment cannot finish before the event date
// @Tags         checkout
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  feasibilityRequest  true  "Items with maintenance decisions"
// @Success      200  {object}  response.Response{data=service.FeasibilityResult}
// @Router       /api/checkout/check-feasibility [post]
func (h *CheckoutHandler) CheckFeasibility(c *gin.Context) {
	var req feasibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	eventStart, err := time.Parse("2006-01-02", req.EventStartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "event_start_date must be YYYY-MM-DD"))
		return
	}

	result, err := h.feasibilityService.Check(c.Request.Context(), req.Items, eventStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Estimate computes a non-binding price for the cart and destination
// @Summary      Estimate price
// @Tags         checkout
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.EstimateRequest  true  "Cart and destination"
// @Success      200  {object}  response.Response{data=service.PricingEstimate}
// @Router       /api/checkout/estimate [post]
func (h *CheckoutHandler) Estimate(c *gin.Context) {
	var req service.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	estimate, err := h.pricingService.EstimatePrice(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}

// Submit performs final submission: availability, maintenance-decision
// validation, the authoritative feasibility check, a price preview, then
// entity creation in the initial status
// @Summary      Submit cart
// @Tags         checkout
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.SubmitRequest  true  "Submission"
// @Success      201  {object}  response.Response{data=service.SubmitResult}
// @Success      200  {object}  response.Response{data=service.SubmitResult}  "Blocked by availability or feasibility"
// @Failure      400  {object}  response.Response
// @Router       /api/checkout/submit [post]
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Client accounts always submit for their own company.
	if clientID := c.GetString("clientID"); clientID != "" {
		req.ClientID = clientID
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		code := httpStatusFor(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	code := http.StatusOK
	if result.Entity != nil {
		code = http.StatusCreated
	}
	c.JSON(code, response.Success(code, result))
}
