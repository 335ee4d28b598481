package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ping", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"pong": "ok"})
	})
	e.GET("/api/panic", func(c echo.Context) error {
		panic("boom")
	})
	e.GET("/api/fail", func(c echo.Context) error {
		return AppErrorResponse(c, TooManyRequestsError("slow down"))
	})
	e.GET("/internal", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerCORSOnAPIOnly(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec = serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec = serve(s, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServerCORSDisabled(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithCORS(false))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := serve(s, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestServerAppError(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/fail", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"slow down"}`, rec.Body.String())
}

func TestServerMetricsEndpoint(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithMetricsPath("/metrics"))

	serve(s, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServerRequestIDPropagated(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	rec := serve(s, req)
	assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}
