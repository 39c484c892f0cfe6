// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DateRangeRequest is the query shape of period reports.
type DateRangeRequest struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// parseID converts a path or body id string with a uniform validation error.
func parseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").
			WithDetail("field", field).WithDetail("value", value)
	}
	return parsed, nil
}

// parseMoney converts a decimal string with a uniform validation error.
func parseMoney(field, value string) (types.Money, error) {
	if value == "" {
		return types.ZeroMoney(), nil
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.ZeroMoney(), apperror.NewValidation("invalid decimal value").
			WithDetail("field", field).WithDetail("value", value)
	}
	return m, nil
}
