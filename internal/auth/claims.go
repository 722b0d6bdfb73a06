package auth

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/authgate/authgate/internal/observability"
)

// Claims is a verified token claim set. Values may be scalars, arrays, nested
// objects, or JSON-encoded strings; identity providers are not consistent
// about which.
type Claims map[string]any

// Well-known claim names.
const (
	ClaimSubject           = "sub"
	ClaimPreferredUsername = "preferred_username"
	ClaimResourceAccess    = "resource_access"
	ClaimRealmAccess       = "realm_access"
	ClaimRoles             = "roles"
)

// roleSource is one of the independent shapes a token may carry roles in.
// Sources are attempted independently; a source that fails to parse is
// skipped and the remaining sources still contribute.
type roleSource interface {
	name() string
	roles(claims Claims) ([]string, error)
}

// ExtractorConfig configures claim extraction.
type ExtractorConfig struct {
	// Audience selects the client entry read from the audience-scoped roles
	// claim. Empty unions roles across all clients.
	Audience string

	// AttributeClaims lists the claims copied into Identity.Attributes.
	AttributeClaims []string
}

// Extractor turns a verified claim set into an Identity.
type Extractor struct {
	sources         []roleSource
	attributeClaims []string
	logger          observability.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorLogger sets the logger used to report skipped claim sources.
func WithExtractorLogger(logger observability.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor creates a claims extractor.
func NewExtractor(cfg ExtractorConfig, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		sources: []roleSource{
			audienceScopedSource{audience: cfg.Audience},
			realmWideSource{},
			flatSource{},
		},
		attributeClaims: cfg.AttributeClaims,
		logger:          observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract derives an Identity from the claim set. It never fails: malformed
// role sources are skipped and a missing subject leaves Subject empty.
func (e *Extractor) Extract(claims Claims) *Identity {
	identity := &Identity{
		Attributes: make(map[string]string),
	}

	identity.Subject, _ = claims[ClaimSubject].(string)
	identity.Username, _ = claims[ClaimPreferredUsername].(string)

	seen := make(map[string]bool)
	for _, source := range e.sources {
		roles, err := source.roles(claims)
		if err != nil {
			e.logger.Debug("skipping malformed role source",
				observability.String("source", source.name()),
				observability.Error(err),
			)
			continue
		}
		for _, role := range roles {
			if role == "" || seen[role] {
				continue
			}
			seen[role] = true
			identity.Roles = append(identity.Roles, role)
		}
	}

	for _, key := range e.attributeClaims {
		if value, ok := claims[key].(string); ok && value != "" {
			identity.Attributes[key] = value
		}
	}

	return identity
}

// audienceScopedSource reads roles from the audience-scoped claim: an object
// keyed by client id, each value an object carrying a roles array.
type audienceScopedSource struct {
	audience string
}

func (audienceScopedSource) name() string { return ClaimResourceAccess }

func (s audienceScopedSource) roles(claims Claims) ([]string, error) {
	raw, ok := claims[ClaimResourceAccess]
	if !ok {
		return nil, nil
	}
	byClient, err := asObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ClaimResourceAccess, err)
	}

	clients := make([]string, 0, len(byClient))
	if s.audience != "" {
		clients = append(clients, s.audience)
	} else {
		for client := range byClient {
			clients = append(clients, client)
		}
		sort.Strings(clients)
	}

	var roles []string
	for _, client := range clients {
		entry, ok := byClient[client]
		if !ok {
			continue
		}
		access, err := asObject(entry)
		if err != nil {
			continue
		}
		clientRoles, err := asStringList(access[ClaimRoles])
		if err != nil {
			continue
		}
		roles = append(roles, clientRoles...)
	}
	return roles, nil
}

// realmWideSource reads roles from the realm-wide claim: an object with a
// top-level roles array.
type realmWideSource struct{}

func (realmWideSource) name() string { return ClaimRealmAccess }

func (realmWideSource) roles(claims Claims) ([]string, error) {
	raw, ok := claims[ClaimRealmAccess]
	if !ok {
		return nil, nil
	}
	access, err := asObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ClaimRealmAccess, err)
	}
	roles, err := asStringList(access[ClaimRoles])
	if err != nil {
		return nil, fmt.Errorf("%s.roles: %w", ClaimRealmAccess, err)
	}
	return roles, nil
}

// flatSource reads the flat roles claim: an array of strings, or a bare
// string treated as a single role.
type flatSource struct{}

func (flatSource) name() string { return ClaimRoles }

func (flatSource) roles(claims Claims) ([]string, error) {
	raw, ok := claims[ClaimRoles]
	if !ok {
		return nil, nil
	}
	roles, err := asStringList(raw)
	if err == nil {
		return roles, nil
	}
	// Fallback: a bare string is one role.
	if single, ok := raw.(string); ok && single != "" {
		return []string{single}, nil
	}
	return nil, fmt.Errorf("%s: %w", ClaimRoles, err)
}

// asObject interprets a claim value as an object, accepting either a native
// map or a JSON-encoded string.
func asObject(v any) (map[string]any, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return value, nil
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

// asStringList interprets a claim value as a list of strings, accepting
// native slices or a JSON-encoded array.
func asStringList(v any) ([]string, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return value, nil
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string element %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		var parsed []string
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
