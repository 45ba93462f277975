package server

import (
	"encoding/json"
	"net/http"

	"github.com/Zanvi/lacasabarber/pkg/errors"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: http.StatusText(status), Code: "INTERNAL"}
	if appErr, ok := errors.As(err); ok {
		resp.Error = appErr.Message
		resp.Code = appErr.Code
		if status < http.StatusInternalServerError {
			resp.Details = appErr.Context
		}
	}
	writeJSON(w, status, resp)
}

// writeAppError выбирает HTTP статус по коду ошибки
func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func statusFor(err error) int {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrInvalidService.Code, errors.ErrInvalidDate.Code, errors.ErrInvalidTime.Code,
		errors.ErrInvalidPhoneNumber.Code, errors.ErrInvalidUserName.Code, errors.ErrInvalidStatus.Code,
		errors.ErrEmptyMessage.Code:
		return http.StatusBadRequest
	case errors.ErrChatBusy.Code, errors.ErrInvalidTransition.Code:
		return http.StatusConflict
	case errors.ErrSessionNotFound.Code:
		return http.StatusNotFound
	case errors.ErrUnauthorized.Code:
		return http.StatusUnauthorized
	case errors.ErrForbidden.Code:
		return http.StatusForbidden
	case errors.ErrAssistantUnavailable.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var errBadBody = errors.New("INVALID_BODY", "corpo da requisição inválido")

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadBody.WithError(err)
	}
	return nil
}
