package httpapi

import (
	"encoding/json"
	"net/http"
)

type ErrorCode string

const (
	CodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	CodeForbidden         ErrorCode = "forbidden"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeInternal          ErrorCode = "internal_error"
	CodeNotSupported      ErrorCode = "not_supported"
	CodeBadRequest        ErrorCode = "bad_request"
	CodeStoreFailed       ErrorCode = "store_failed"
	CodeStreamUnsupported ErrorCode = "stream_unsupported"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error struct {
		Code      ErrorCode `json:"code"`
		Message   string    `json:"message"`
		RequestID string    `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
