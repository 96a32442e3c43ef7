package handlers

// SuccessResponse is the uniform success envelope.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the uniform error envelope. Errors carries the
// field-error map for validation failures.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func successEnvelope(message string, data interface{}) SuccessResponse {
	return SuccessResponse{Status: "success", Message: message, Data: data}
}

func errorEnvelope(message string, errs interface{}) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message, Errors: errs}
}
