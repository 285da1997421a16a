package utils

// Application-specific error codes surfaced in failure envelopes.
const (
	ErrCodeDuplicateClient  = "DUPLICATE_CLIENT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_SERVER_ERROR"
)

// APIResponse is the JSON envelope every endpoint speaks:
// {success, data?, message?, code?, missingFields?}.
type APIResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Message       string      `json:"message,omitempty"`
	Code          string      `json:"code,omitempty"`
	MissingFields []string    `json:"missingFields,omitempty"`
}

// SuccessResponse wraps data in a success envelope.
func SuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{Success: true, Data: data, Message: message}
}

// FailureResponse builds a failure envelope with a human-readable message.
func FailureResponse(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

// FailureWithCode builds a failure envelope carrying an application error code.
func FailureWithCode(code, message string) APIResponse {
	return APIResponse{Success: false, Code: code, Message: message}
}

// MissingFieldsResponse builds the 400 envelope listing every missing required field.
func MissingFieldsResponse(fields []string, message string) APIResponse {
	return APIResponse{
		Success:       false,
		Code:          ErrCodeValidationFailed,
		Message:       message,
		MissingFields: fields,
	}
}
