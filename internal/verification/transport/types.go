// Package transport provides HTTP request/response types for the
// verification domain.
package transport

// VerifyRequest is the HTTP request body for a verification round trip.
// Field names match the verification engine's own API.
type VerifyRequest struct {
	Title      string `json:"title"`
	HindiTitle string `json:"hindi_title,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
