package finance

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type projectDirectory interface {
	Get(ctx context.Context, companyID, projectID string) (*projects.Project, error)
}

type Handler struct {
	service  *Service
	projects projectDirectory
}

// RegisterProjectSubroutes mounts the financials endpoint under the projects
// group. The project is resolved under the caller's company before any ledger
// rows are fetched.
func RegisterProjectSubroutes(rg *gin.RouterGroup, service *Service, projectRepo projectDirectory) {
	h := &Handler{service: service, projects: projectRepo}
	rg.GET("/:project_id/financials", h.dashboard)
}

func (h *Handler) dashboard(c *gin.Context) {
	companyID := auth.CompanyID(c)
	projectID := c.Param("project_id")

	if _, err := h.projects.Get(c.Request.Context(), companyID, projectID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project"})
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to aggregate financials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "financials": dashboard})
}
