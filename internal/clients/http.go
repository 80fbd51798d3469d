package clients

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("", h.list)
	rg.POST("", h.create)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.ListByCompany(c.Request.Context(), auth.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "clients": items})
}

type createReq struct {
	Name        string  `json:"name"`
	Address     *string `json:"address"`
	ContactInfo *string `json:"contact_info"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	cl, err := h.repo.Create(c.Request.Context(), auth.CompanyID(c), strings.TrimSpace(req.Name), req.Address, req.ContactInfo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "client": cl})
}
