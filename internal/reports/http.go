package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/projects"
)

type Handler struct {
	service  *Service
	projects *projects.Repo
}

func RegisterProjectSubroutes(rg *gin.RouterGroup, service *Service, projectRepo *projects.Repo) {
	h := &Handler{service: service, projects: projectRepo}
	rg.GET("/:project_id/reports", h.list)
}

func (h *Handler) list(c *gin.Context) {
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

	list, err := h.service.List(c.Request.Context(), projectID, c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "reports": list})
}
