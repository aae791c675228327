package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/session"
)

type errorBody struct {
	Code    ferrors.Code `json:"code"`
	Message string       `json:"message"`
	Column  int          `json:"column,omitempty"`
}

// statusFor maps an error to its HTTP status by code.
func statusFor(err error) int {
	if errors.Is(err, session.ErrLimit) {
		return http.StatusServiceUnavailable
	}
	switch code := ferrors.GetCode(err); {
	case ferrors.IsInvalid(err):
		return http.StatusBadRequest
	case code == ferrors.ErrCodeNotFound, code == ferrors.ErrCodeUndefinedSlot, code == ferrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ferrors.IsEvaluation(err), code == ferrors.ErrCodeNonConvergence:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Code: ferrors.GetCode(err), Message: ferrors.UserMessage(err)}
	if body.Code == "" {
		body.Code = ferrors.ErrCodeInternal
	}
	var se *expr.SyntaxError
	if errors.As(err, &se) {
		body.Message = se.Message
		body.Column = se.Column()
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ferrors.New(ferrors.ErrCodeInvalidInput, "request body is empty")
		}
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func slotParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "slot")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= expr.MaxSlots {
		return 0, ferrors.New(ferrors.ErrCodeInvalidArgument, "slot must be an integer in [0, %d), got %q", expr.MaxSlots, raw)
	}
	return n, nil
}

// floatQuery parses query parameter name, returning def when it is absent.
func floatQuery(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ferrors.New(ferrors.ErrCodeInvalidArgument, "%s: %q is not a number", name, raw)
	}
	return v, nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ferrors.New(ferrors.ErrCodeInvalidArgument, "%s: %q is not an integer", name, raw)
	}
	return v, nil
}
