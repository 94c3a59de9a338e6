package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appsubscription "kinora/internal/application/subscription"
	"kinora/internal/domain/subscription"
	"kinora/internal/shared/logger"
	"kinora/internal/shared/utils"
)

// PlanHandler serves plan administration, the public plan list and purchase.
type PlanHandler struct {
	service *appsubscription.Service
	logger  logger.Interface
}

func NewPlanHandler(service *appsubscription.Service, logger logger.Interface) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  logger,
	}
}

type PlanRequest struct {
	Name             string   `json:"name" binding:"required,max=100"`
	Price            uint64   `json:"price" binding:"required"`
	DurationDays     int      `json:"duration_days" binding:"required,min=1"`
	AllowedQualities []string `json:"allowed_qualities"`
}

type PlanResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Price            uint64   `json:"price"`
	DurationDays     int      `json:"duration_days"`
	AllowedQualities []string `json:"allowed_qualities"`
	Status           string   `json:"status"`
}

type PurchaseRequest struct {
	PlanID uint   `json:"plan_id" binding:"required"`
	Method string `json:"method" binding:"required,max=30"`
}

type SubscriptionResponse struct {
	ID        uint      `json:"id"`
	PlanID    uint      `json:"plan_id"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func toPlanResponse(p *subscription.Plan) PlanResponse {
	qualities := make([]string, 0, len(p.AllowedQualities()))
	for _, q := range p.AllowedQualities() {
		qualities = append(qualities, q.String())
	}
	return PlanResponse{
		ID:               p.ID(),
		Name:             p.Name(),
		Slug:             p.Slug(),
		Price:            p.Price(),
		DurationDays:     p.DurationDays(),
		AllowedQualities: qualities,
		Status:           string(p.Status()),
	}
}

func toSubscriptionResponse(s *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID(),
		PlanID:    s.PlanID(),
		Status:    string(s.Status()),
		StartDate: s.StartDate(),
		EndDate:   s.EndDate(),
	}
}

// CreatePlan handles POST /api/admin/plans.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), appsubscription.PlanInput{
		Name:             req.Name,
		Price:            req.Price,
		DurationDays:     req.DurationDays,
		AllowedQualities: req.AllowedQualities,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toPlanResponse(plan))
}

// UpdatePlan handles PUT /api/admin/plans/:id.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	plan, err := h.service.UpdatePlan(c.Request.Context(), planID, appsubscription.PlanInput{
		Name:             req.Name,
		Price:            req.Price,
		DurationDays:     req.DurationDays,
		AllowedQualities: req.AllowedQualities,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toPlanResponse(plan))
}

// DeactivatePlan handles DELETE /api/admin/plans/:id. Plans are soft-removed
// so running subscriptions keep resolving.
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.service.DeactivatePlan(c.Request.Context(), planID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// ListPlans handles GET /api/plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, toPlanResponse(p))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// Purchase handles POST /api/plans/purchase for the authenticated profile.
func (h *PlanHandler) Purchase(c *gin.Context) {
	profileID := utils.ProfileIDFromContext(c)
	if profileID == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), *profileID, req.PlanID, req.Method)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toSubscriptionResponse(result.Subscription), "subscription activated")
}

// MySubscriptions handles GET /api/subscriptions/me.
func (h *PlanHandler) MySubscriptions(c *gin.Context) {
	profileID := utils.ProfileIDFromContext(c)
	if profileID == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	subs, err := h.service.MySubscriptions(c.Request.Context(), *profileID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		items = append(items, toSubscriptionResponse(s))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}
