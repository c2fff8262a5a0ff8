package types

// SuccessEnvelope wraps every successful API payload under a data key so
// clients never have to branch on the top-level shape.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Details carries per-field validation
// messages when the error code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error payload.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
