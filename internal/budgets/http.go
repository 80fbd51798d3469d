package budgets

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type budgetReader interface {
	GetByProject(ctx context.Context, projectID string) (*Budget, error)
	DetailsByBudget(ctx context.Context, budgetID string) ([]Detail, error)
}

type projectDirectory interface {
	Get(ctx context.Context, companyID, projectID string) (*projects.Project, error)
}

type Handler struct {
	repo     budgetReader
	projects projectDirectory
}

// RegisterProjectSubroutes mounts the budget overview under the projects group.
func RegisterProjectSubroutes(rg *gin.RouterGroup, repo budgetReader, projectRepo projectDirectory) {
	h := &Handler{repo: repo, projects: projectRepo}

	rg.GET("/:project_id/budget", h.overview)
}

// overview returns the budget row plus its detail rows, the shape the budget
// overview screen renders. The project is resolved under the caller's company
// first.
func (h *Handler) overview(c *gin.Context) {
	projectID := c.Param("project_id")

	if _, err := h.projects.Get(c.Request.Context(), auth.CompanyID(c), projectID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return
	}

	b, err := h.repo.GetByProject(c.Request.Context(), projectID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "budget not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	details, err := h.repo.DetailsByBudget(c.Request.Context(), b.BudgetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "budget": b, "details": details})
}
