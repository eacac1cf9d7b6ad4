package whatsapp

import (
	"encoding/json"
	"fmt"
)

// RequestFailure is returned by Send when the request could not be built,
// did not reach the API, or came back with a non-2xx status.
type RequestFailure struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // Graph error message, or the raw body
	Body       []byte
	Err        error
}

func newStatusFailure(status int, body []byte) *RequestFailure {
	f := &RequestFailure{Op: "whatsapp API", StatusCode: status, Body: body, Message: string(body)}
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		f.Message = ge.Error.Message
	}
	return f
}

func (e *RequestFailure) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("whatsapp API status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestFailure) Unwrap() error { return e.Err }
