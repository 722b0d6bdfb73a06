package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
)

type staticValidator struct {
	claims auth.Claims
	err    error
}

func (v *staticValidator) Validate(_ context.Context, _ string) (auth.Claims, error) {
	return v.claims, v.err
}

func newTestRouter(t *testing.T, claims auth.Claims) *gin.Engine {
	t.Helper()

	validator := &staticValidator{claims: claims}
	if claims == nil {
		validator.err = errors.New("signature mismatch")
	}
	extractor := auth.NewExtractor(auth.ExtractorConfig{
		AttributeClaims: []string{"country", "department", "tenant"},
	})
	return NewRouter(validator, extractor, observability.NopLogger())
}

func adminClaims() auth.Claims {
	return auth.Claims{
		"sub":                "admin-1",
		"preferred_username": "admin",
		"roles":              []any{"Admin"},
		"department":         "IT",
	}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminRequiresAdminRole(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, auth.Claims{
		"sub":   "user-1",
		"roles": []any{"User"},
	})

	for _, path := range []string{"/", "/users", "/settings", "/reports", "/reports/1"} {
		w := get(router, path)
		assert.Equal(t, http.StatusForbidden, w.Code, "path %s", path)
	}
}

func TestAdminRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	w := get(router, "/users")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminInfo(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-User-Name", "admin")
	req.Header.Set("X-User-Department", "IT")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message    string         `json:"message"`
		User       map[string]any `json:"user"`
		SystemInfo map[string]any `json:"systemInfo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Admin API - Access granted", body.Message)
	assert.Equal(t, "admin", body.User["name"])
	assert.Equal(t, "IT", body.User["department"])
	assert.Equal(t, "operational", body.SystemInfo["status"])
}

func TestAdminUsers(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := get(router, "/users")
	require.Equal(t, http.StatusOK, w.Code)

	var users []adminUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "Support", users[2].Role)
}

func TestAdminSettings(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := get(router, "/settings")
	require.Equal(t, http.StatusOK, w.Code)

	var settings map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, float64(1000), settings["maxUsers"])
	assert.Equal(t, false, settings["maintenanceMode"])
}

func TestAdminReports(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := get(router, "/reports")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Reports  []report       `json:"reports"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Reports, 3)
	assert.Contains(t, body.Metadata, "currentHour")
}

func TestAdminReportByID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := get(router, "/reports/7")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "Report 7", body["name"])

	w = get(router, "/reports/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHealthNeedsNoToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
