package handler

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the standard success response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    any             `json:"data"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

// PaginationMeta holds offset pagination info.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// JSON writes a JSON response with the standard envelope.
func JSON(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// JSONList writes a paginated JSON list response.
func JSONList(c echo.Context, status int, message string, data any, meta PaginationMeta) error {
	if meta.Limit > 0 {
		meta.TotalPages = (meta.Total + int64(meta.Limit) - 1) / int64(meta.Limit)
	}
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data, Meta: &meta})
}
