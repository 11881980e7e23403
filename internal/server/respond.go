package server

import (
	"encoding/json"
	"net/http"

	"github.com/mveldt/craftplan/pkg/errors"
)

// errorEnvelope is the JSON shape of every failure response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error's code to an HTTP status and writes the
// envelope. Internal detail stays out of the message; only the user-safe
// text crosses the boundary.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorEnvelope{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidTarget,
		errors.ErrCodeInvalidRegion,
		errors.ErrCodeInvalidWorld,
		errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeItemNotFound,
		errors.ErrCodePlanNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
