package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wheats/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DBの疎通確認（/healthz用）
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Log     *zap.Logger
	DB      Pinger
	Metrics http.Handler // nilなら/metricsを出さない
	Auth    echo.MiddlewareFunc
	Cart    RouteRegistrar
	Order   RouteRegistrar
	Service string
}

type Server struct {
	e    *echo.Echo
	http *http.Server
	log  *zap.Logger
}

func New(addr string, d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e, d)

	// span名はメソッドとパス
	h := otelhttp.NewHandler(e, d.Service,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	return &Server{
		e: e,
		http: &http.Server{
			Addr:         addr,
			Handler:      h,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: d.Log,
	}
}

// Handlerはテスト用
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Startはブロックする。Shutdownで止めたときはnilを返す。
func (s *Server) Start() error {
	s.log.Info("starting api", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
