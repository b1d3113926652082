package transport

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx (or auth-expired) response from the remote service.
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func newAPIError(status int, body []byte) *APIError {
	detail := gjson.GetBytes(body, "detail").String()
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	if len(detail) > 512 {
		detail = detail[:512]
	}
	return &APIError{StatusCode: status, Detail: detail, Body: string(body)}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
}
