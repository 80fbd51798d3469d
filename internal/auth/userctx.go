package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildledger/buildledger-backend/internal/auth/repository"
)

const (
	CtxAuthUID   = "auth_uid"
	CtxCompanyID = "company_id"
)

// WithProfile resolves the profile row for the authenticated uid and exposes
// its company association to downstream handlers. Runs after the token
// middleware has set auth_uid.
func WithProfile(profiles *repository.ProfileRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetString(CtxAuthUID))
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
			c.Abort()
			return
		}

		profile, err := profiles.EnsureProfile(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure profile: " + err.Error()})
			c.Abort()
			return
		}

		if profile.CompanyID != nil {
			c.Set(CtxCompanyID, *profile.CompanyID)
		}
		c.Next()
	}
}

// UserUID returns the authenticated uid set by the auth middleware.
func UserUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxAuthUID))
}

// CompanyID returns the company the current user belongs to, or "" if the
// signup flow has not attached one yet.
func CompanyID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxCompanyID))
}

// RequireCompany aborts with 403 when the user has not joined a company.
// Every dashboard route is company-scoped.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CompanyID(c) == "" {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "no company associated with this account"})
			c.Abort()
			return
		}
		c.Next()
	}
}
