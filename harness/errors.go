package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	resty "github.com/go-resty/resty/v2"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
	StatusError   = "ERROR"

	AccessDeniedCode = "NG_ACCESS_DENIED"
)

type ApiResponse struct {
	Status           string            `json:"status"`
	Code             string            `json:"code"`
	Message          string            `json:"message"`
	CorrelationID    string            `json:"correlationId"`
	ResponseMessages []ResponseMessage `json:"responseMessages"`
}

type ResponseMessage struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// APIError is returned for transport failures decoded from a non-200 response
// and for 200 responses carrying a FAILURE status.
type APIError struct {
	StatusCode int
	ApiResponse
}

func (e *APIError) Error() string {
	if len(e.ResponseMessages) == 0 && e.Message != "" {
		return fmt.Sprintf("CorrelationId: %s, Message: %s", e.CorrelationID, e.Message)
	}
	return fmt.Sprintf("CorrelationId: %s, ResponseMessages: %+v", e.CorrelationID, e.ResponseMessages)
}

func (e *APIError) AccessDenied() bool {
	if e.Code == AccessDeniedCode {
		return true
	}
	for _, m := range e.ResponseMessages {
		if m.Code == AccessDeniedCode {
			return true
		}
	}
	return false
}

func newAPIError(resp *resty.Response) error {
	ar := ApiResponse{}
	if err := json.Unmarshal(resp.Body(), &ar); err != nil {
		return &APIError{
			StatusCode:  resp.StatusCode(),
			ApiResponse: ApiResponse{Status: StatusError, Message: strings.TrimSpace(resp.Status())},
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), ApiResponse: ar}
}

// RBACErrorMessage extracts the message a user should see for err. Access
// denied errors name the missing permission.
func RBACErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	if apiErr.AccessDenied() {
		for _, m := range apiErr.ResponseMessages {
			if m.Code == AccessDeniedCode && m.Message != "" {
				return "You are missing the following permission: " + m.Message
			}
		}
		if apiErr.Message != "" {
			return "You are missing the following permission: " + apiErr.Message
		}
		return "You do not have the required permission for this action"
	}

	for _, m := range apiErr.ResponseMessages {
		if m.Level == StatusError && m.Message != "" {
			return m.Message
		}
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return apiErr.Error()
}
