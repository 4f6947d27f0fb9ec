package core

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	ErrSessionNotFound   = "SESSION_NOT_FOUND"
	ErrInvalidSquare     = "INVALID_SQUARE"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInvalidAnnotation = "INVALID_ANNOTATION"
	ErrInvalidProfile    = "INVALID_PROFILE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)
