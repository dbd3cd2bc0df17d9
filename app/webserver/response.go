package webserver

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response is the JSON envelope of every non-proxied endpoint.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK wraps data in a successful response.
func OK(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error returns an error response with msg.
func Error(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// ValidationError joins the field violations into one message.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(msgs, ", "))
}
