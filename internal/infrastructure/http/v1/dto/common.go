// Package dto defines request/response shapes for HTTP API v1.
package dto

// IDResponse carries just an entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic confirmation body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse mirrors the error body produced by the error middleware.
// Declared for documentation and client-generation purposes.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
