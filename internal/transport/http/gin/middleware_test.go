package httpgin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/b-coman/prop-management-sub011/internal/repository"
	"github.com/b-coman/prop-management-sub011/internal/service/booking"
	"github.com/b-coman/prop-management-sub011/internal/service/quote"
)

func buildAuthTestRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	r := buildAuthTestRouter("secret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing bearer prefix", "secret", http.StatusUnauthorized},
		{"padded bare token", " secret ", http.StatusUnauthorized},
		{"lowercase scheme", "bearer secret", http.StatusUnauthorized},
		{"valid token", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestAdminAuth_EmptyTokenDisablesAdmin(t *testing.T) {
	r := buildAuthTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("echoes a provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, "abc-123", resp.Header().Get("X-Request-ID"))
	})

	t.Run("generates one when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
	})
}

func TestRespondErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config missing", fmt.Errorf("svc:%w", quote.ErrConfigMissing), http.StatusNotFound},
		{"invalid range", quote.ErrInvalidRange, http.StatusBadRequest},
		{"booking not found", fmt.Errorf("svc:%w", booking.ErrBookingNotFound), http.StatusNotFound},
		{"not on hold", booking.ErrNotOnHold, http.StatusConflict},
		{"dates unavailable", repository.ErrDatesUnavailable, http.StatusConflict},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(resp)
			respondErr(c, tt.err)
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}
