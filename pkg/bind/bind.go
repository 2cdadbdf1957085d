// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/validate"
)

// ErrEmptyBody is returned when the request carries no body at all.
var ErrEmptyBody = errors.New("request body is empty")

// JSON decodes the body of r into dest, then validates dest.
//
// A malformed, empty or oversized body is an error. Validation failures come
// back as a field → message map with a nil error so callers can answer 422
// instead of 400. Bodies are capped at MAX_BODY_BYTES and unknown fields
// are rejected.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	if err := decode(r, dest); err != nil {
		return nil, err
	}
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func decode(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	body := http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dest)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.As(err, &tooLarge):
		return fmt.Errorf("request body too large (max %d bytes)", tooLarge.Limit)
	default:
		return fmt.Errorf("invalid JSON: %w", err)
	}
}
