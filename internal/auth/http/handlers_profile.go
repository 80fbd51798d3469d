package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth"
	"github.com/buildledger/buildledger-backend/internal/auth/repository"
)

type ProfileHandler struct {
	profiles *repository.ProfileRepo
}

func Register(rg *gin.RouterGroup, profiles *repository.ProfileRepo) {
	h := &ProfileHandler{profiles: profiles}

	rg.GET("/me", h.me)
	rg.PUT("/me", h.update)
}

func (h *ProfileHandler) me(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}

type updateProfileReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Country   *string `json:"country"`
	JobTitle  *string `json:"job_title"`
}

func (h *ProfileHandler) update(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	err := h.profiles.Update(c.Request.Context(), repository.Profile{
		ID:        auth.UserUID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Country:   req.Country,
		JobTitle:  req.JobTitle,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
