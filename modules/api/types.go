package api

// Response is the envelope every endpoint returns. The dashboard reads
// Message verbatim and never inspects error kinds beyond Success.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// successResponse builds a success envelope.
func successResponse(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// failureResponse builds a failure envelope.
func failureResponse(message string) Response {
	return Response{Success: false, Message: message}
}

// SignupRequest represents a signup request body.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest represents a login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateStatusRequest represents the status-only task update body.
type UpdateStatusRequest struct {
	StatusID string `json:"status_id"`
}

// ProfileRequest represents a profile edit body.
type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
