package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/vfxgraph/pkg/errors"
)

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedDocument, errors.ErrCodeUnknownDescriptor,
		errors.ErrCodeDanglingSource, errors.ErrCodeUnsupportedVersion,
		errors.ErrCodeSchemaMismatch, errors.ErrCodeDanglingReference,
		errors.ErrCodeUnknownID, errors.ErrCodeDuplicateID:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}
