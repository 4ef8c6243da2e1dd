package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/apierr"
	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/metrics"
)

// ErrorHandler is the global error handler for echo. Every failure leaves
// the server as an apierr.Response.
type ErrorHandler struct {
	normalizer *apierr.Normalizer
	metrics    *metrics.Metrics
}

// NewErrorHandler creates an ErrorHandler. m may be nil.
func NewErrorHandler(n *apierr.Normalizer, m *metrics.Metrics) *ErrorHandler {
	return &ErrorHandler{normalizer: n, metrics: m}
}

// Handle implements echo.HTTPErrorHandler.
func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}

	failure := h.failure(err, c)
	input, _ := c.Get(contextKeyInput).(map[string]any)

	resp := h.normalizer.Classify(failure, input)
	status := apierr.ResolveStatus(failure)
	family := apierr.Family(failure)

	logFailure(c, err, resp, status, family)
	if h.metrics != nil {
		h.metrics.RecordFailure(family, status)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, resp)
	}
	if writeErr != nil {
		slog.Error("failed to send error response", "error", writeErr)
	}
}

// failure returns the value to classify: the raw value of a recovered panic,
// a StatusError for echo's own HTTP errors, or err itself.
func (h *ErrorHandler) failure(err error, c echo.Context) any {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.value
	}

	var be *echo.BindingError
	if errors.As(err, &be) && be.HTTPError != nil {
		return fromHTTPError(be.HTTPError, c.Request().URL.Path)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he, c.Request().URL.Path)
	}

	return err
}

func fromHTTPError(he *echo.HTTPError, path string) *domain.StatusError {
	text := http.StatusText(he.Code)
	if text == "" {
		text = "Error"
	}

	message := text
	switch m := he.Message.(type) {
	case string:
		if m != "" {
			message = m
		}
	case nil:
	default:
		message = fmt.Sprint(m)
	}

	label := strings.ReplaceAll(text, " ", "")
	if !strings.HasSuffix(label, "Error") {
		label += "Error"
	}
	kind := strings.ToLower(strings.ReplaceAll(text, " ", "_"))

	return domain.NewStatusError(label, message, he.Code, kind, nil, path)
}

func logFailure(c echo.Context, err error, resp apierr.Response, status int, family string) {
	messages := make([]string, 0, len(resp.Error.Errors))
	for _, fe := range resp.Error.Errors {
		messages = append(messages, fe.Message)
	}
	sort.Strings(messages)

	attrs := []any{
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"status", status,
		"family", family,
		"name", resp.Error.Name,
		"errors", messages,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err,
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
		return
	}
	slog.Warn("request failed", attrs...)
}

// RouteNotFound answers any request that matched no route.
func RouteNotFound(c echo.Context) error {
	r := c.Request()
	return domain.NewStatusError("NotFoundError",
		fmt.Sprintf("Requested End-Point \"%s: %s\" Not Found!", r.Method, r.URL.Path),
		http.StatusNotFound, "not_found", nil, r.URL.Path)
}
