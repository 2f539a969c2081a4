// Package llm holds the wire representations exchanged between relay clients,
// the relay, and the Open WebUI chat API.
package llm

// ErrorResponse is the body returned to callers when a request fails.
type ErrorResponse struct {
	Error  string `json:"error"`            // Fixed failure classification
	Detail string `json:"detail,omitempty"` // Human readable cause
}
