package proxy

import (
	"net/http"

	"github.com/authgate/authgate/internal/auth"
)

// Identity propagation headers. These are the only channel by which
// downstream services learn who the caller is; the gateway is their sole
// ingress by deployment invariant.
const (
	HeaderUserID         = "X-User-Id"
	HeaderUserName       = "X-User-Name"
	HeaderUserCountry    = "X-User-Country"
	HeaderUserDepartment = "X-User-Department"
	HeaderUserTenant     = "X-User-Tenant"
)

// attributeHeaders maps attribute claim keys to their outbound headers.
var attributeHeaders = map[string]string{
	"country":    HeaderUserCountry,
	"department": HeaderUserDepartment,
	"tenant":     HeaderUserTenant,
}

// IdentityHeaders maps an identity onto its outbound header set. A header
// is emitted only for a present, non-empty field.
func IdentityHeaders(identity *auth.Identity) http.Header {
	headers := make(http.Header)
	if identity == nil {
		return headers
	}
	if identity.Subject != "" {
		headers.Set(HeaderUserID, identity.Subject)
	}
	if identity.Username != "" {
		headers.Set(HeaderUserName, identity.Username)
	}
	for key, header := range attributeHeaders {
		if value, ok := identity.Attribute(key); ok && value != "" {
			headers.Set(header, value)
		}
	}
	return headers
}

// IdentityFromHeaders reconstructs the propagated identity fields on the
// downstream side. Roles are not propagated; backends derive them from the
// forwarded bearer token.
func IdentityFromHeaders(headers http.Header) *auth.Identity {
	identity := &auth.Identity{
		Subject:    headers.Get(HeaderUserID),
		Username:   headers.Get(HeaderUserName),
		Attributes: make(map[string]string),
	}
	for key, header := range attributeHeaders {
		if value := headers.Get(header); value != "" {
			identity.Attributes[key] = value
		}
	}
	return identity
}
