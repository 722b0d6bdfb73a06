package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		expected string
		wantErr  error
	}{
		{
			name:     "valid bearer token",
			header:   "Bearer abc.def.ghi",
			expected: "abc.def.ghi",
		},
		{
			name:     "scheme is case insensitive",
			header:   "bearer abc.def.ghi",
			expected: "abc.def.ghi",
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: ErrNoToken,
		},
		{
			name:    "wrong scheme",
			header:  "Basic dXNlcjpwYXNz",
			wantErr: ErrNoToken,
		},
		{
			name:    "scheme without token",
			header:  "Bearer",
			wantErr: ErrNoToken,
		},
		{
			name:    "empty token",
			header:  "Bearer ",
			wantErr: ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := http.NewRequest(http.MethodGet, "/api/orders", nil)
			require.NoError(t, err)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, err := BearerToken(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}
