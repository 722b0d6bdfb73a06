package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/proxy"
)

// identityKey is the gin context key holding the authenticated identity.
const identityKey = "service.identity"

// Role names carried in token claims.
const (
	RoleAdmin   = "Admin"
	RoleUser    = "User"
	RoleSupport = "Support"
)

// Authenticate returns a gin middleware that validates the bearer token
// and stores the derived identity in the request context. Requests
// without a valid token are answered 401.
func Authenticate(validator auth.TokenValidator, extractor *auth.Extractor, logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.Request)
		if err == nil {
			var claims auth.Claims
			claims, err = validator.Validate(c.Request.Context(), token)
			if err == nil {
				c.Set(identityKey, extractor.Extract(claims))
				c.Next()
				return
			}
		}

		logger.Debug("authentication failed",
			observability.String("path", c.Request.URL.Path),
			observability.Error(err),
		)
		c.Header("WWW-Authenticate", `Bearer realm="authgate"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
	}
}

// RequireAnyRole returns a gin middleware that answers 403 unless the
// authenticated identity holds at least one of the given roles.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil || !identity.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticate, or nil.
func IdentityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// ForwardedIdentity reads the X-User-* metadata the gateway attached.
// It is informational only; enforcement uses IdentityFrom.
func ForwardedIdentity(c *gin.Context) *auth.Identity {
	return proxy.IdentityFromHeaders(c.Request.Header)
}

// GatewayMetadata summarizes the forwarded identity headers for inclusion
// in response payloads.
type GatewayMetadata struct {
	UserID     string `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
	Country    string `json:"country,omitempty"`
	Department string `json:"department,omitempty"`
	Tenant     string `json:"tenant,omitempty"`
}

// MetadataFrom builds the response metadata from the forwarded headers.
func MetadataFrom(c *gin.Context) GatewayMetadata {
	forwarded := ForwardedIdentity(c)
	country, _ := forwarded.Attribute("country")
	department, _ := forwarded.Attribute("department")
	tenant, _ := forwarded.Attribute("tenant")
	return GatewayMetadata{
		UserID:     forwarded.Subject,
		Username:   forwarded.Username,
		Country:    country,
		Department: department,
		Tenant:     tenant,
	}
}
