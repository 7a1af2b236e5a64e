package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/auth"
	"github.com/talkincode/storefront/internal/blobstore"
	"go.uber.org/zap"
)

// ClaimsContextKey is where the JWT middleware stores *auth.Claims.
const ClaimsContextKey = "admin"

// TokenParser verifies bearer tokens for protected routes.
type TokenParser interface {
	ParseToken(raw string) (*auth.Claims, error)
}

// AdminServer is the storefront HTTP server. Public routes are registered
// with GET/POST/DELETE, routes that require an admin token with the Auth* variants.
type AdminServer struct {
	root       *echo.Echo
	cfg        *config.AppConfig
	requireJWT echo.MiddlewareFunc
}

// NewAdminServer builds the echo instance with the shared middleware chain
// and serves uploadDir under /uploads.
func NewAdminServer(cfg *config.AppConfig, tokens TokenParser, uploadDir string) (*AdminServer, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("init request id generator: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.Validator = &requestValidator{validate: validator.New()}

	s := &AdminServer{root: e, cfg: cfg}
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return node.Generate().String() },
	}))
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Web.CorsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(cfg.Web.MaxUploadSize))

	s.requireJWT = echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return tokens.ParseToken(raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			zap.L().Debug("admin token rejected",
				zap.String("namespace", "webserver"),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Missing or invalid admin token",
			})
		},
	})

	e.Static(blobstore.URLPrefix, uploadDir)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Storefront backend running")
	})
	return s, nil
}

// Echo exposes the underlying router, used by tests.
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

func (s *AdminServer) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.GET(path, h, m...)
}

func (s *AdminServer) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.POST(path, h, m...)
}

func (s *AdminServer) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.DELETE(path, h, m...)
}

func (s *AdminServer) AuthGET(path string, h echo.HandlerFunc) {
	s.root.GET(path, h, s.requireJWT)
}

func (s *AdminServer) AuthPOST(path string, h echo.HandlerFunc) {
	s.root.POST(path, h, s.requireJWT)
}

func (s *AdminServer) AuthDELETE(path string, h echo.HandlerFunc) {
	s.root.DELETE(path, h, s.requireJWT)
}

// Start listens on the configured address until Shutdown is called.
func (s *AdminServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.S().Infof("Prepare to start the web server %s", addr)
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// GetClaims returns the verified admin claims of a protected request.
func GetClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims
}

func (s *AdminServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("unhandled request error",
			zap.String("namespace", "webserver"),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, map[string]interface{}{"code": code, "message": message})
	}
	if err != nil {
		zap.L().Error("failed to write error response", zap.Error(err))
	}
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "webserver"),
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}
