package http

// APIResponse is the envelope every endpoint answers with, success or not.
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func ok(status int, data interface{}, message string) APIResponse {
	return APIResponse{StatusCode: status, Data: data, Message: message, Success: true}
}

func fail(status int, message string) APIResponse {
	return APIResponse{StatusCode: status, Message: message, Success: false}
}
