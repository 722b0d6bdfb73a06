package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/observability"
)

// staticValidator accepts any token and returns fixed claims.
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
	return NewRouter(NewRepository(), validator, extractor, observability.NopLogger())
}

func adminClaims() auth.Claims {
	return auth.Claims{
		"sub":                "admin-1",
		"preferred_username": "admin",
		"roles":              []any{"Admin"},
	}
}

func userClaims() auth.Claims {
	return auth.Claims{
		"sub":                "user-1",
		"preferred_username": "jdoe",
		"roles":              []any{"User"},
		"country":            "Chile",
	}
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthNeedsNoToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)
	w := doRequest(router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Bearer realm="authgate"`, w.Header().Get("WWW-Authenticate"))
}

func TestListIncludesForwardedMetadata(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, userClaims())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Name", "jdoe")
	req.Header.Set("X-User-Country", "Chile")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Orders   []Order        `json:"orders"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Orders, 3)
	assert.Equal(t, "jdoe", body.Metadata["requestedBy"])
	assert.Equal(t, "user-1", body.Metadata["userId"])
	assert.Equal(t, "Chile", body.Metadata["country"])
}

func TestGetOrder(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, userClaims())

	w := doRequest(router, http.MethodGet, "/2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var order Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "Jane Smith", order.CustomerName)

	w = doRequest(router, http.MethodGet, "/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"order not found"}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRequiresAdmin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, userClaims())
	w := doRequest(router, http.MethodPost, "/", `{"customerName":"Alice","product":"Monitor","amount":340}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"forbidden"}`, w.Body.String())
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := doRequest(router, http.MethodPost, "/", `{"customerName":"Alice","product":"Monitor","amount":340}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var order Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 4, order.ID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "admin", order.CreatedBy)
}

func TestCreateRejectsBadPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing product", `{"customerName":"Alice","amount":340}`},
		{"non-positive amount", `{"customerName":"Alice","product":"Monitor","amount":0}`},
		{"not json", `customerName=Alice`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, adminClaims())
			w := doRequest(router, http.MethodPost, "/", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())
	w := doRequest(router, http.MethodPatch, "/1", `{"status":"Completed"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var order Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, StatusCompleted, order.Status)

	w = doRequest(router, http.MethodPut, "/99", `{"status":"Completed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, adminClaims())

	w := doRequest(router, http.MethodDelete, "/3", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
