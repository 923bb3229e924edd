package api

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrSessionExpired is returned when the backend answers 401 on a call. The
// gateway has already invalidated the local session by the time callers see
// this error.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Error is a non-success response from the backend, or a transport failure
// (Status 0). Message carries the server-supplied text verbatim when the
// body provides one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// statusError builds an *Error for a non-2xx response, preferring the
// server's own message over a generic status-derived one.
func statusError(status int, body []byte) *Error {
	msg := MessageFromBody(body)
	if msg == "" {
		msg = fmt.Sprintf("API error: %d", status)
	}
	return &Error{Status: status, Message: msg}
}

// MessageFromBody extracts a human-readable message from a JSON error body,
// checking the "message" then "error" fields. It returns "" when the body is
// not a JSON object or carries neither field.
func MessageFromBody(data []byte) string {
	var message, fallback string

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message":
			v, err := d.Str()
			if err != nil {
				return err
			}
			message = v
			return nil
		case "error":
			v, err := d.Str()
			if err != nil {
				return err
			}
			fallback = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return ""
	}
	if message != "" {
		return message
	}
	return fallback
}
