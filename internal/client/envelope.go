package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

const wrappedMessage = "Request successful"

// Envelope is the uniform response shape of every API call.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      *ErrorBody      `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// ErrorBody is the machine-readable part of a failed envelope.
type ErrorBody struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Pagination mirrors the server's list metadata.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalItems int `json:"total_items"`
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Status  int
	Message string
	Code    string
	Fields  map[string]string
}

func (e *HTTPError) Error() string { return e.Message }

func newHTTPError(status int, raw []byte) *HTTPError {
	herr := &HTTPError{Status: status, Message: fmt.Sprintf("HTTP error! status: %d", status)}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return herr
	}
	var msg string
	if json.Unmarshal(body["message"], &msg) == nil && msg != "" {
		herr.Message = msg
	}
	// The error detail is optional and its shape varies between backends.
	var detail ErrorBody
	if json.Unmarshal(body["error"], &detail) == nil {
		herr.Code = detail.Code
		herr.Fields = detail.Fields
	}
	return herr
}

// APIError is a 2xx envelope with success set to false.
type APIError struct {
	Message string
	Code    string
}

func (e *APIError) Error() string { return e.Message }

// ErrNoData is returned by Decode when a successful envelope carries no data.
var ErrNoData = errors.New("response has no data")

// Decode unmarshals the envelope's data into T.
func Decode[T any](env *Envelope) (T, error) {
	var out T
	if env == nil {
		return out, ErrNoData
	}
	if !env.Success {
		apiErr := &APIError{Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
		}
		return out, apiErr
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, ErrNoData
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}
