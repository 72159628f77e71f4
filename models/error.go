package models

// ErrorMessageResponse is the body of every error reply
type ErrorMessageResponse struct {
	Response MessageError `json:"response"`
}

// MessageError carries the human message and the underlying error text
type MessageError struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
