package gotrue

import (
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// errorBody covers the error shapes GoTrue versions return
type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Code             any    `json:"code"`
}

func (b errorBody) message() string {
	for _, candidate := range []string{b.Msg, b.ErrorDescription, b.Message, b.Error} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

func (b errorBody) textCode() string {
	if b.ErrorCode != "" {
		return b.ErrorCode
	}
	if code, ok := b.Code.(string); ok && code != "" {
		return code
	}
	return b.Error
}

// responseError keeps the provider message verbatim as the error message
func responseError(operation string, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.message()
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "identity provider error"
	}

	category := goerrors.CategoryAuth
	if status >= http.StatusInternalServerError {
		category = goerrors.CategoryOperation
	}

	err := goerrors.New(message, category).
		WithMetadata(map[string]any{
			"operation": operation,
			"status":    status,
		})

	switch {
	case status == http.StatusUnauthorized:
		err = err.WithCode(goerrors.CodeUnauthorized)
	case status == http.StatusForbidden:
		err = err.WithCode(goerrors.CodeForbidden)
	case status == http.StatusNotFound:
		err = err.WithCode(goerrors.CodeNotFound)
	case status == http.StatusConflict:
		err = err.WithCode(goerrors.CodeConflict)
	case status >= http.StatusInternalServerError:
		err = err.WithCode(goerrors.CodeInternal)
	default:
		err = err.WithCode(goerrors.CodeBadRequest)
	}

	if code := body.textCode(); code != "" {
		err = err.WithTextCode(strings.ToUpper(code))
	}

	return err
}
