package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/metrics"
	"github.com/boulevard/bicycles/internal/validation"
)

const (
	contextKeyPrincipal = "principal"
	contextKeyInput     = "input"
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(token string) (domain.Principal, error)
}

// RequestLogger logs each HTTP request with structured fields and records
// its latency. m may be nil.
func RequestLogger(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			duration := time.Since(start)
			status := c.Response().Status

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			if m != nil {
				route := c.Path()
				if route == "" {
					route = "unmatched"
				}
				m.ObserveRequest(c.Request().Method, route, status, duration)
			}

			return nil
		}
	}
}

// panicError carries a recovered panic value to the error handler.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// Recover turns a panic in a handler into an error carrying the raw panic
// value.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				slog.Error("panic recovered",
					"panic", fmt.Sprint(r),
					"path", c.Request().URL.Path,
					"stack", string(debug.Stack()),
				)
				err = &panicError{value: r}
			}()

			return next(c)
		}
	}
}

// JWTAuth validates the Bearer token and injects the principal into echo context.
func JWTAuth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.Unauthorized("You must login first!", "auth")
			}

			token := header
			if scheme, rest, ok := strings.Cut(header, " "); ok {
				if !strings.EqualFold(scheme, "Bearer") {
					return domain.Unauthorized("Unsupported authorization scheme!", "auth")
				}
				token = strings.TrimSpace(rest)
			}

			principal, err := tokens.ValidateToken(token)
			if err != nil {
				return err
			}

			c.Set(contextKeyPrincipal, principal)
			return next(c)
		}
	}
}

// RequireRoles rejects callers whose role is not one of roles. It must run
// after JWTAuth.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := GetPrincipal(c)
			if !ok {
				return domain.Unauthorized("You must login first!", "auth")
			}
			if !slices.Contains(roles, principal.Role) {
				return domain.Forbidden("You do not have permission to access this resource!", "auth")
			}
			return next(c)
		}
	}
}

// GetPrincipal extracts the authenticated caller from echo context.
func GetPrincipal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(contextKeyPrincipal).(domain.Principal)
	return p, ok
}

// bindBody decodes and validates the JSON request body into dst. The decoded
// body is kept on the context for error reporting.
func bindBody(c echo.Context, v *validation.Validator, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return fmt.Errorf("read request body: %w", err)
	}

	input, err := v.Decode(body, dst)
	if input != nil {
		c.Set(contextKeyInput, input)
	}
	return err
}

// bindQuery binds query parameters into dst and validates it. The raw
// parameters are kept on the context for error reporting.
func bindQuery(c echo.Context, v *validation.Validator, dst any) error {
	params := c.QueryParams()
	input := make(map[string]any, len(params))
	for k, vs := range params {
		if len(vs) > 0 {
			input[k] = vs[0]
		}
	}
	c.Set(contextKeyInput, input)

	if err := v.CheckQuery(params, dst); err != nil {
		return err
	}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return err
	}
	return c.Validate(dst)
}
