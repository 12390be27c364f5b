package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videohub/internal/apperr"
)

type stubAuth map[string]string

func (s stubAuth) Authenticate(token string) (string, error) {
	if token == "" {
		return "", apperr.Unauthorized("Unauthorized request")
	}
	id, ok := s[token]
	if !ok {
		return "", apperr.Unauthorized("Invalid Access Token")
	}
	return id, nil
}

func guardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AccessGuard(stubAuth{"good": "user-1"}), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestAccessGuard(t *testing.T) {
	tests := []struct {
		name        string
		cookie      string
		header      string
		wantStatus  int
		wantBody    string
		wantMessage string
	}{
		{name: "cookie", cookie: "good", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "bearer header", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "cookie wins", cookie: "good", header: "Bearer bad", wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantMessage: "Unauthorized request"},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized, wantMessage: "Unauthorized request"},
		{name: "invalid", header: "Bearer bad", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid Access Token"},
	}

	r := guardedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}

			var body struct {
				StatusCode int      `json:"statusCode"`
				Message    string   `json:"message"`
				Success    bool     `json:"success"`
				Errors     []string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.False(t, body.Success)
			assert.NotNil(t, body.Errors)
		})
	}
}
