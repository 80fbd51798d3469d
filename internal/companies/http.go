package companies

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/auth/repository"
)

type Handler struct {
	repo     *Repo
	profiles *repository.ProfileRepo
}

func Register(rg *gin.RouterGroup, repo *Repo, profiles *repository.ProfileRepo) {
	h := &Handler{repo: repo, profiles: profiles}

	rg.POST("", h.create)
	rg.POST("/join", h.join)
	rg.GET("/current", h.current)
}

type createReq struct {
	Name     string  `json:"name"`
	Address  *string `json:"address"`
	Industry *string `json:"industry"`
	Size     *int    `json:"size"`
}

// create inserts a company and attaches the caller's profile to it.
func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	co, err := h.repo.Create(c.Request.Context(), strings.TrimSpace(req.Name), req.Address, req.Industry, req.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.profiles.SetCompany(c.Request.Context(), auth.UserUID(c), co.CompanyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "attach profile: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "company": co})
}

type joinReq struct {
	Code string `json:"code"`
}

func (h *Handler) join(c *gin.Context) {
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	co, err := h.repo.FindByJoinCode(c.Request.Context(), strings.TrimSpace(req.Code))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "invalid join code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.profiles.SetCompany(c.Request.Context(), auth.UserUID(c), co.CompanyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "attach profile: " + err.Error()})
		return
	}

	// join code stays private to existing members
	co.JoinCode = ""
	c.JSON(http.StatusOK, gin.H{"ok": true, "company": co})
}

func (h *Handler) current(c *gin.Context) {
	companyID := auth.CompanyID(c)
	if companyID == "" {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no company associated with this account"})
		return
	}

	co, err := h.repo.Get(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "company not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "company": co})
}
