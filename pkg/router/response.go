package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newErrorResponse(err error) (response, int) {
	var errx errorx.Error
	if errors.As(err, &errx) {
		return response{Code: int64(errx.Code), Error: errx.Message}, statusCode(errx.Code)
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}, http.StatusInternalServerError
}

func statusCode(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.AlreadyExists, errorx.StreakConflict:
		return http.StatusConflict
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(ctx context.Context, w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, response{Code: 0, Data: data}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

// WriteError renders err in the response envelope. Handlers which write the
// response themselves use it before an upgrade.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	resp, status := newErrorResponse(err)
	if err := WriteJSON(w, status, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
