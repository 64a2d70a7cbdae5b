package metabase

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when neither an API key nor a username is configured.
var ErrMissingCredentials = errors.New("metabase credentials missing: set an api key or username and password")

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
