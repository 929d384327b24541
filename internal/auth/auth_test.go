package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmstandards/internal/auth"
)

func tokens() auth.TokenService {
	return auth.TokenService{Secret: []byte("test-secret"), Issuer: "pmstandards", Duration: time.Hour}
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := tokens()
	raw, exp, err := ts.Sign("ops")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	good := tokens()

	t.Run("wrong secret", func(t *testing.T) {
		other := good
		other.Secret = []byte("other")
		raw, _, err := other.Sign("ops")
		require.NoError(t, err)
		_, err = good.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := good
		other.Issuer = "elsewhere"
		raw, _, err := other.Sign("ops")
		require.NoError(t, err)
		_, err = good.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		other := good
		other.Duration = -time.Minute
		raw, _, err := other.Sign("ops")
		require.NoError(t, err)
		_, err = good.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("empty secret cannot sign", func(t *testing.T) {
		_, _, err := auth.TokenService{}.Sign("ops")
		assert.Error(t, err)
	})
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := tokens()

	router := gin.New()
	router.POST("/reload", auth.AdminMiddleware(ts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": auth.GetClaims(c).Subject})
	})

	raw, _, err := ts.Sign("ops")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + raw, http.StatusOK},
		{"lowercase scheme", "bearer " + raw, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
