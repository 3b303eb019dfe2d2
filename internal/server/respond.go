package server

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/observability"
)

var hooks = observability.Server

type reply struct {
	Success bool   `json:"success"`
	TabID   string `json:"tabId,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, reply{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), reply{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeMalformedInput, errors.ErrCodeUnknownLayout, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidScope, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNodeNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoGraph:
		return http.StatusConflict
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// readBody returns the request body, bounded by MaxPayloadBytes.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxPayloadBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read body")
	}
	if len(data) > MaxPayloadBytes {
		return nil, errors.New(errors.ErrCodeMalformedInput, "payload exceeds %d bytes", MaxPayloadBytes)
	}
	return data, nil
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}
