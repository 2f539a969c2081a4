package upstream

import "fmt"

// ErrorClass is the fixed classification reported for every upstream failure.
const ErrorClass = "upstream communication error"

// CommunicationError is returned whenever the Open WebUI call fails: the
// transport failed, the upstream answered with a non-2xx status, or the body
// could not be read as JSON. It is never retried.
type CommunicationError struct {
	Err error
}

func (e *CommunicationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("Error communicating with Open WebUI: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError captures a non-2xx upstream response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("upstream returned %d from %s: %s", e.StatusCode, e.URL, e.Body)
}
