package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secrets/internal/common"
)

// APIError is the error half of the response envelope.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{Code: e.Code, Message: message, StatusCode: e.StatusCode}
}

var (
	ErrUnauthorized = &APIError{Code: "unauthorized", Message: "authentication required", StatusCode: http.StatusUnauthorized}
	ErrBadRequest   = &APIError{Code: "bad_request", Message: "invalid request", StatusCode: http.StatusBadRequest}
	ErrNotFound     = &APIError{Code: "not_found", Message: "resource not found", StatusCode: http.StatusNotFound}
	ErrConflict     = &APIError{Code: "conflict", Message: common.MsgEmailExists, StatusCode: http.StatusConflict}
	ErrInternal     = &APIError{Code: "internal_error", Message: common.MsgGeneric, StatusCode: http.StatusInternalServerError}
)

// loginError maps a failed login to a response. With generic set, unknown
// email and wrong password look the same to the client.
func loginError(err error, generic bool) *APIError {
	msg := common.UserMessage(err)
	if generic {
		msg = common.GenericLoginMessage(err)
	}

	switch {
	case errors.Is(err, common.ErrAccountNotFound), errors.Is(err, common.ErrBadSecret):
		return ErrUnauthorized.WithMessage(msg)
	case errors.Is(err, common.ErrorValidation):
		return ErrBadRequest.WithMessage(msg)
	default:
		return ErrInternal
	}
}

func registrationError(err error) *APIError {
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return ErrConflict
	case errors.Is(err, common.ErrorValidation):
		return ErrBadRequest.WithMessage(common.UserMessage(err))
	default:
		return ErrInternal.WithMessage(common.MsgRegistrationFailed)
	}
}
