package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTMiddleware(testSecret, zerolog.Nop()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/whoami", func(c *gin.Context) {
		op := reel.OperatorFromContext(c.Request.Context())
		id, _ := GetOperatorID(c)
		if op == nil || op.ID != id {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, op.ID+"/"+op.Name)
	})
	return r
}

func TestJWTMiddleware(t *testing.T) {
	valid, err := GenerateToken(testSecret, "op-1", "Host", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	expired, _ := GenerateToken(testSecret, "op-1", "Host", -time.Hour)
	foreign, _ := GenerateToken("other-secret", "op-1", "Host", time.Hour)

	tests := []struct {
		name     string
		path     string
		header   string
		expected int
		body     string
	}{
		{name: "skip path", path: "/health", expected: http.StatusOK},
		{name: "missing", path: "/whoami", expected: http.StatusUnauthorized},
		{name: "bad prefix", path: "/whoami", header: "Token " + valid, expected: http.StatusUnauthorized},
		{name: "header", path: "/whoami", header: "Bearer " + valid, expected: http.StatusOK, body: "op-1/Host"},
		{name: "query", path: "/whoami?token=" + valid, expected: http.StatusOK, body: "op-1/Host"},
		{name: "expired", path: "/whoami", header: "Bearer " + expired, expected: http.StatusUnauthorized},
		{name: "wrong secret", path: "/whoami?token=" + foreign, expected: http.StatusUnauthorized},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, w.Code)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, w.Body.String())
			}
		})
	}
}

func TestParseToken_RequiresOperator(t *testing.T) {
	token, _ := GenerateToken(testSecret, "", "nobody", time.Hour)
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("expected error for token without operator id")
	}
}
