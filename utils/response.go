package utils

// APIResponse is the standard JSON envelope every endpoint returns.
// Success: { "status": true,  "message": "...", "data": { ... } }
// Failure: { "status": false, "message": "...", "errors": "..." }
type APIResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// BuildResponseSuccess wraps a successful payload (HTTP 200/201).
func BuildResponseSuccess(message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
	}
}

// BuildResponseFailed wraps an error response (HTTP 4xx/5xx). err may
// be a string, a map or a slice depending on what the handler collected.
func BuildResponseFailed(message string, err interface{}, data interface{}) APIResponse {
	return APIResponse{
		Status:  false,
		Message: message,
		Errors:  err,
		Data:    data,
	}
}
