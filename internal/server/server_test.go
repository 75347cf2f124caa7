package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeRoutes struct{ path string }

func (f fakeRoutes) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group(f.path)
	g.Use(auth)
	g.GET("", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
}

func denyAll(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(":0", Deps{DB: fakePinger{}, Service: "test"})
	rec := get(s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s = New(":0", Deps{DB: fakePinger{err: errors.New("down")}, Service: "test"})
	rec = get(s.Handler(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsIsPublic(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("wheats_cart_operations_total 1\n"))
	})
	s := New(":0", Deps{Metrics: metrics, Auth: denyAll, Cart: fakeRoutes{path: "/api/cart"}, Service: "test"})

	rec := get(s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wheats_cart_operations_total")

	// APIは認証を通る
	rec = get(s.Handler(), "/api/cart")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsDisabled(t *testing.T) {
	s := New(":0", Deps{Service: "test"})
	rec := get(s.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoverFromPanic(t *testing.T) {
	s := New(":0", Deps{Service: "test"})
	s.e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := get(s.Handler(), "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
