package ado

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates the service answered 404.
	ErrNotFound = errors.New("ado resource not found")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("ado authentication failed")

	// ErrAzCLIMissing indicates no az executable was found for token acquisition.
	ErrAzCLIMissing = errors.New("az CLI not found; install Azure CLI or set AZDO_TOKEN")
)

// StatusError is a non-2xx response from the REST API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return nil
	}
}
