package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/demand"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/output"
	"github.com/chrisdamba/grocerplan/internal/planner"
	"github.com/chrisdamba/grocerplan/internal/repositories"
)

// PlanHandler exposes the planner over HTTP.
type PlanHandler struct {
	planner *planner.Planner
	writer  output.PlanWriter
	plans   repositories.PlanRepository
	logger  *zap.Logger
}

// NewPlanHandler constructs the handler. writer and plans may be nil; without
// plans, GET /v1/plans/:id answers 404.
func NewPlanHandler(p *planner.Planner, writer output.PlanWriter, plans repositories.PlanRepository, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{planner: p, writer: writer, plans: plans, logger: logger}
}

type householdRequest struct {
	ID      string                   `json:"id"`
	Members []models.HouseholdMember `json:"members" binding:"required"`
	Stock   []models.PantryStockItem `json:"stock"`
}

func (r householdRequest) household() models.Household {
	h := models.Household{ID: r.ID, Members: r.Members, Stock: r.Stock}
	h.NormalizeSex()
	return h
}

type requirementResponse struct {
	Daily models.Nutrients            `json:"daily"`
	Week  models.NetWeeklyRequirement `json:"weekly"`
}

// CreatePlan solves one household and returns the purchase plan.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req householdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid household payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.planner.Plan(c.Request.Context(), req.household())
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.writer != nil {
		if err := h.writer.WritePlan(c.Request.Context(), plan); err != nil {
			// the plan is still returned; delivery failures are only logged
			h.logger.Error("failed to deliver plan", zap.String("plan_id", plan.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlan returns a stored plan by id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	if h.plans == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan storage is not configured"})
		return
	}
	plan, err := h.plans.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Requirement returns the daily and net weekly requirement without solving.
func (h *PlanHandler) Requirement(c *gin.Context) {
	var req householdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	week, err := h.planner.Requirement(req.household())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, requirementResponse{Daily: week.Daily(), Week: week})
}

// Catalog summarizes the loaded catalog.
func (h *PlanHandler) Catalog(c *gin.Context) {
	cat := h.planner.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"items":    cat.Len(),
		"eligible": len(cat.Eligible()),
		"stores":   cat.Stores(),
	})
}

func (h *PlanHandler) writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error()}

	var infeasible *models.InfeasibleProblemError
	if errors.As(err, &infeasible) {
		body["constraint_class"] = infeasible.Class
		if infeasible.Constraint != "" {
			body["constraint"] = infeasible.Constraint
		}
	}
	var lookup *models.LookupError
	if errors.As(err, &lookup) {
		body["member_index"] = lookup.MemberIndex
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("plan request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Info("plan request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

// StatusFor maps planner errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrLookup), errors.Is(err, models.ErrValidation), errors.Is(err, demand.ErrNoMembers):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInfeasible):
		return http.StatusConflict
	case errors.Is(err, models.ErrSolverTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
