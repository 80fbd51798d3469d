package changeorders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/events"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type orderStore interface {
	Create(ctx context.Context, co ChangeOrder) (*ChangeOrder, error)
	ListByProject(ctx context.Context, projectID string) ([]ChangeOrder, error)
	Get(ctx context.Context, changeOrderID string) (*ChangeOrder, error)
	SetStatus(ctx context.Context, changeOrderID, status, approvedBy string) error
}

type budgetLedger interface {
	GetByProject(ctx context.Context, projectID string) (*budgets.Budget, error)
	AddToRevised(ctx context.Context, budgetID string, delta float64, date string) error
}

type projectDirectory interface {
	Get(ctx context.Context, companyID, projectID string) (*projects.Project, error)
}

type Handler struct {
	repo      orderStore
	budgets   budgetLedger
	projects  projectDirectory
	publisher *events.Publisher
}

// RegisterProjectSubroutes mounts create/list under the projects group;
// Register mounts the approval routes.
func RegisterProjectSubroutes(rg *gin.RouterGroup, repo orderStore, budgetRepo budgetLedger, projectRepo projectDirectory, publisher *events.Publisher) *Handler {
	h := &Handler{repo: repo, budgets: budgetRepo, projects: projectRepo, publisher: publisher}

	rg.POST("/:project_id/change-orders", h.create)
	rg.GET("/:project_id/change-orders", h.list)

	return h
}

func Register(rg *gin.RouterGroup, h *Handler) {
	rg.POST("/:change_order_id/approve", h.approve)
	rg.POST("/:change_order_id/reject", h.reject)
}

// ownsProject reports whether the project exists under the caller's company.
func (h *Handler) ownsProject(c *gin.Context, projectID string) bool {
	_, err := h.projects.Get(c.Request.Context(), auth.CompanyID(c), projectID)
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return false
	}
	return true
}

type createReq struct {
	AdditionalCost *float64 `json:"additional_cost"`
	Description    *string  `json:"description"`
	Date           *string  `json:"date"`
}

func (h *Handler) create(c *gin.Context) {
	projectID := c.Param("project_id")
	if !h.ownsProject(c, projectID) {
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ctx := c.Request.Context()

	co := ChangeOrder{
		ProjectID:      projectID,
		AdditionalCost: req.AdditionalCost,
		Description:    req.Description,
		Date:           req.Date,
	}

	// attach the project's budget when one exists
	if b, err := h.budgets.GetByProject(ctx, projectID); err == nil {
		co.BudgetID = &b.BudgetID
	}

	created, err := h.repo.Create(ctx, co)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	h.publisher.Publish(ctx, events.Event{
		Type:      events.ChangeOrderCreated,
		ProjectID: projectID,
		UserID:    auth.UserUID(c),
		Data:      map[string]interface{}{"change_order_id": created.ChangeOrderID},
	})

	c.JSON(http.StatusCreated, gin.H{"ok": true, "change_order": created})
}

func (h *Handler) list(c *gin.Context) {
	projectID := c.Param("project_id")
	if !h.ownsProject(c, projectID) {
		return
	}

	items, err := h.repo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "change_orders": items})
}

// resolveOrder loads the change order and verifies its project belongs to the
// caller's company. Foreign orders read as not found.
func (h *Handler) resolveOrder(c *gin.Context) (*ChangeOrder, bool) {
	co, err := h.repo.Get(c.Request.Context(), c.Param("change_order_id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "change order not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return nil, false
	}

	if _, err := h.projects.Get(c.Request.Context(), auth.CompanyID(c), co.ProjectID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "change order not found"})
		return nil, false
	}
	return co, true
}

// approve marks the change order approved and folds its additional cost into
// the budget's revised total.
func (h *Handler) approve(c *gin.Context) {
	co, ok := h.resolveOrder(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := h.repo.SetStatus(ctx, co.ChangeOrderID, StatusApproved, auth.UserUID(c)); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "change order is not pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if co.AdditionalCost != nil {
		if b, err := h.budgets.GetByProject(ctx, co.ProjectID); err == nil {
			today := time.Now().UTC().Format("2006-01-02")
			if err := h.budgets.AddToRevised(ctx, b.BudgetID, *co.AdditionalCost, today); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "revise budget: " + err.Error()})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) reject(c *gin.Context) {
	co, ok := h.resolveOrder(c)
	if !ok {
		return
	}

	err := h.repo.SetStatus(c.Request.Context(), co.ChangeOrderID, StatusRejected, auth.UserUID(c))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "change order is not pending"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
