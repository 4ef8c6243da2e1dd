package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/metrics"
	"github.com/boulevard/bicycles/internal/validation"
)

// ServerConfig holds the HTTP settings of NewServer.
type ServerConfig struct {
	FrontendURL string
	BodyLimit   string
}

// Handlers groups the endpoint handlers mounted by NewServer.
type Handlers struct {
	Products *ProductHandler
	Orders   *OrderHandler
	Auth     *AuthHandler
	Users    *UserHandler
	Tokens   TokenValidator
}

// NewServer builds the echo instance with middleware, routes and the global
// error handler. m may be nil.
func NewServer(cfg ServerConfig, errs *ErrorHandler, v *validation.Validator, m *metrics.Metrics, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errs.Handle
	e.Validator = v

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger(m))
	e.Use(Recover())
	if cfg.FrontendURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
			ExposeHeaders:    []string{echo.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	e.GET("/", root)
	e.GET("/api", root)
	e.GET("/health", func(c echo.Context) error {
		return JSON(c, http.StatusOK, "OK", map[string]string{"status": "ok"})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	auth := JWTAuth(h.Tokens)
	admin := RequireRoles(domain.RoleAdmin)
	customer := RequireRoles(domain.RoleCustomer)
	anyone := RequireRoles(domain.RoleCustomer, domain.RoleAdmin)

	api := e.Group("/api")

	// Route-level middleware keeps unmatched paths on the catch-all below.
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh-token", h.Auth.Refresh)
	api.GET("/auth/me", h.Auth.Me, auth)

	api.GET("/products", h.Products.List)
	api.GET("/products/:id", h.Products.Get)
	api.POST("/products", h.Products.Create, auth, admin)
	api.PUT("/products/:id", h.Products.Update, auth, admin)
	api.PATCH("/products/:id", h.Products.Update, auth, admin)
	api.DELETE("/products/:id", h.Products.Delete, auth, admin)

	api.POST("/orders", h.Orders.Create, auth, customer)
	api.GET("/orders", h.Orders.List, auth, anyone)
	api.GET("/orders/revenue", h.Orders.Revenue, auth, admin)

	api.GET("/users", h.Users.List, auth, admin)
	api.PATCH("/admin/users/block/:id", h.Users.Block, auth, admin)
	api.PATCH("/admin/users/unblock/:id", h.Users.Unblock, auth, admin)

	e.RouteNotFound("/*", RouteNotFound)

	return e
}

func root(c echo.Context) error {
	return JSON(c, http.StatusOK, "Bicycle Server is Running!", nil)
}
