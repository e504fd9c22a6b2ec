package dto

// Envelope wraps every JSON API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Code    string `json:"code,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds an error envelope.
func Fail(code, message string, data any) Envelope {
	return Envelope{Success: false, Message: message, Data: data, Code: code}
}
