package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/energyofmoney/internal/api/apierr"
	"github.com/mcoot/energyofmoney/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return apierr.NewForbiddenError(message)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst as is
// when optional is set.
func decodeBody(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case optional && errors.Is(err, io.EOF):
		return nil
	default:
		return NewInvalidRequestError("invalid request body")
	}
}

// roomID reads the {id} path variable. Room codes are case-insensitive.
func roomID(r *http.Request) model.RoomID {
	return model.RoomID(strings.ToUpper(mux.Vars(r)["id"]))
}
