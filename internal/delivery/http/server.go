package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"splitpay/config"
	"splitpay/internal/delivery"
	httpmiddleware "splitpay/internal/delivery/http/middleware"
	"splitpay/internal/delivery/http/router"
	"splitpay/internal/delivery/http/validator"
	"splitpay/internal/delivery/middleware"
	"splitpay/internal/domain/lifecycle"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type HTTPParams struct {
	fx.In
	fx.Lifecycle

	Config       *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

func NewServer(params HTTPParams) (delivery.Delivery, error) {
	echoServer, err := NewEcho(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	r := router.NewRouter(params.RouterParams)
	r.RegisterRoutes(echoServer)

	srv := &httpServer{
		cfg:    params.Config,
		logger: params.Logger,
		server: echoServer,
	}

	params.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// NewEcho builds the Echo instance with the shared middleware chain and error handler.
func NewEcho(cfg *config.Config, logger *slog.Logger) (*echo.Echo, error) {
	ipExtractor, err := newIPExtractor(cfg.HTTP.TrustedProxies)
	if err != nil {
		return nil, err
	}

	echoServer := echo.New()
	echoServer.IPExtractor = ipExtractor
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Server.ReadTimeout = cfg.HTTP.Timeouts.ReadTimeout
	echoServer.Server.ReadHeaderTimeout = cfg.HTTP.Timeouts.ReadHeaderTimeout
	echoServer.Server.WriteTimeout = cfg.HTTP.Timeouts.WriteTimeout
	echoServer.Server.IdleTimeout = cfg.HTTP.Timeouts.IdleTimeout

	// 1. Recover middleware first (to catch panics early)
	echoServer.Use(echomiddleware.Recover())

	// 2. Request ID middleware (must be before logger to include in logs)
	requestIDMiddleware := middleware.NewRequestIDMiddleware(logger)
	echoServer.Use(requestIDMiddleware.Process)

	// 3. Logger middleware
	loggerMiddleware := middleware.NewLoggerMiddleware(logger, cfg)
	echoServer.Use(loggerMiddleware.Handle)

	// 4. CORS middleware
	echoServer.Use(echomiddleware.CORS())

	// 5. Request body size limit
	if cfg.HTTP.MaxRequestBodySize != "" {
		echoServer.Use(echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize))
	}

	errorMiddleware := httpmiddleware.NewErrorMiddleware(logger)
	echoServer.HTTPErrorHandler = errorMiddleware.HandleHTTPError

	echoServer.Validator = validator.New()

	return echoServer, nil
}

// newIPExtractor decides what c.RealIP returns. X-Forwarded-For is honoured
// only when the socket peer falls inside one of the trusted CIDRs.
func newIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid trusted proxy %q", cidr)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}

	return echo.ExtractIPFromXFFHeader(options...), nil
}

func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("host_port", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
