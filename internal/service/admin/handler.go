package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/health"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/service"
)

// Version reported by the admin info endpoint.
const version = "1.0.0"

// Handler serves the admin endpoints.
type Handler struct {
	logger observability.Logger
}

// NewHandler creates an admin handler.
func NewHandler(logger observability.Logger) *Handler {
	return &Handler{logger: logger}
}

// NewRouter builds the admin service router. Endpoints mount at the root:
// the gateway strips /api/admin for the general admin route and the full
// /api/admin/reports prefix for the reports route, so gateway traffic for
// /api/admin/reports arrives here as "/". The /reports paths stay mounted
// for direct (non-gateway) callers.
func NewRouter(validator auth.TokenValidator, extractor *auth.Extractor, logger observability.Logger) *gin.Engine {
	engine := service.NewEngine()
	engine.Use(service.Recovery(logger), service.RequestLogger(logger))

	checker := health.NewChecker(version)
	engine.GET("/health", gin.WrapF(checker.HealthHandler()))

	h := NewHandler(logger)

	authed := engine.Group("",
		service.Authenticate(validator, extractor, logger),
		service.RequireAnyRole(service.RoleAdmin),
	)
	authed.GET("/", h.Info)
	authed.GET("/users", h.Users)
	authed.GET("/settings", h.Settings)
	authed.GET("/reports", h.Reports)
	authed.GET("/reports/:id", h.Report)

	return engine
}

// Info returns system status plus the forwarded identity metadata.
func (h *Handler) Info(c *gin.Context) {
	metadata := service.MetadataFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Admin API - Access granted",
		"user": gin.H{
			"id":         metadata.UserID,
			"name":       metadata.Username,
			"country":    metadata.Country,
			"department": metadata.Department,
			"tenant":     metadata.Tenant,
		},
		"systemInfo": gin.H{
			"status":    "operational",
			"version":   version,
			"timestamp": time.Now().UTC(),
		},
	})
}

// adminUser is an entry in the demo user listing.
type adminUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Users returns the demo user listing.
func (h *Handler) Users(c *gin.Context) {
	c.JSON(http.StatusOK, []adminUser{
		{ID: 1, Username: "admin", Email: "admin@example.com", Role: service.RoleAdmin},
		{ID: 2, Username: "user", Email: "user@example.com", Role: service.RoleUser},
		{ID: 3, Username: "support", Email: "support@example.com", Role: service.RoleSupport},
	})
}

// Settings returns the demo settings payload.
func (h *Handler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"maxUsers":        1000,
		"features":        []string{"RBAC", "ABAC", "OAuth2", "OIDC"},
		"maintenanceMode": false,
	})
}

// report is an entry in the reports listing.
type report struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Reports returns the reports listing. The working-hours restriction is
// enforced at the gateway; this handler only reports the current hour so
// callers can see why access may flip.
func (h *Handler) Reports(c *gin.Context) {
	now := time.Now().UTC()
	metadata := service.MetadataFrom(c)

	c.JSON(http.StatusOK, gin.H{
		"reports": []report{
			{ID: 1, Name: "Sales Report", Type: "Monthly", GeneratedAt: now.AddDate(0, 0, -1)},
			{ID: 2, Name: "User Activity Report", Type: "Weekly", GeneratedAt: now.AddDate(0, 0, -2)},
			{ID: 3, Name: "System Performance Report", Type: "Daily", GeneratedAt: now.Add(-6 * time.Hour)},
		},
		"metadata": gin.H{
			"requestedBy": metadata.Username,
			"department":  metadata.Department,
			"currentHour": now.Hour(),
			"timestamp":   now,
		},
	})
}

// Report returns a single report by ID.
func (h *Handler) Report(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid report id"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"name":        fmt.Sprintf("Report %d", id),
		"content":     "Report content here...",
		"generatedAt": time.Now().UTC(),
	})
}
