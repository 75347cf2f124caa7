package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc)
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	// 認証なし
	e.GET("/healthz", healthz(d.DB))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	// 認証あり
	if d.Cart != nil {
		d.Cart.RegisterRoutes(e, d.Auth)
	}
	if d.Order != nil {
		d.Order.RegisterRoutes(e, d.Auth)
	}
}

func healthz(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			if err := db.PingContext(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
