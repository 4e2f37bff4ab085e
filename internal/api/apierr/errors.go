// Package apierr maps domain errors onto HTTP responses.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/energyofmoney/internal/model"
	"github.com/mcoot/energyofmoney/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeInvalidDisplayName   = "INVALID_DISPLAY_NAME"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeDisplayNameTaken     = "DISPLAY_NAME_TAKEN"
	CodeInvalidConfig        = "INVALID_CONFIG"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodeRoomFull             = "ROOM_FULL"
	CodeRoomAlreadyStarted   = "ROOM_ALREADY_STARTED"
	CodeWrongPassword        = "WRONG_PASSWORD"
	CodeNotCreator           = "NOT_CREATOR"
	CodeNotAllReady          = "NOT_ALL_READY"
	CodeNotYourTurn          = "NOT_YOUR_TURN"
	CodeGameNotStarted       = "GAME_NOT_STARTED"
	CodeGameFinished         = "GAME_FINISHED"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeRecipientNotFound    = "RECIPIENT_NOT_FOUND"
	CodeCreditLimitExceeded  = "CREDIT_LIMIT_EXCEEDED"
	CodeInvalidOperation     = "INVALID_OPERATION"
	CodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

// mapping pairs a sentinel with its status and code. The response message
// is the wrapped error's text, so context such as the available balance
// reaches the client.
type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrRecipientNotFound, http.StatusNotFound, CodeRecipientNotFound},
	{model.ErrRoomFull, http.StatusConflict, CodeRoomFull},
	{model.ErrRoomAlreadyStarted, http.StatusConflict, CodeRoomAlreadyStarted},
	{model.ErrDisplayNameTaken, http.StatusConflict, CodeDisplayNameTaken},
	{model.ErrNotAllReady, http.StatusConflict, CodeNotAllReady},
	{model.ErrGameNotStarted, http.StatusConflict, CodeGameNotStarted},
	{model.ErrGameFinished, http.StatusConflict, CodeGameFinished},
	{model.ErrWrongPassword, http.StatusForbidden, CodeWrongPassword},
	{model.ErrNotCreator, http.StatusForbidden, CodeNotCreator},
	{model.ErrNotYourTurn, http.StatusForbidden, CodeNotYourTurn},
	{model.ErrInvalidConfig, http.StatusBadRequest, CodeInvalidConfig},
	{model.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{model.ErrInvalidOperation, http.StatusBadRequest, CodeInvalidOperation},
	{model.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{model.ErrCreditLimitExceeded, http.StatusUnprocessableEntity, CodeCreditLimitExceeded},
	{model.ErrStorageUnavailable, http.StatusServiceUnavailable, CodeStorageUnavailable},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrUsernameExists, http.StatusConflict, CodeUsernameExists},
	{auth.ErrInvalidDisplayName, http.StatusBadRequest, CodeInvalidDisplayName},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
