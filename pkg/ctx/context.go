// Package ctx gives handlers a single *Context in place of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (bc *BasketController) Remove(c *ctx.Context) {
//	    items, change, err := bc.store.Remove(c.Context(), c.Param("product"))
//	    ...
//	}
//
//	b.Delete("/items/{product}", "basket.remove", ctx.Wrap(bc.Remove))
package ctx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diybuddy/projectbuddy/pkg/bind"
	"github.com/diybuddy/projectbuddy/pkg/logger"
	"github.com/diybuddy/projectbuddy/pkg/response"
	"github.com/diybuddy/projectbuddy/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts h for any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{w: w, r: r})
	}
}

// Context is one request/response exchange.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	status int
}

func (c *Context) Request() *http.Request      { return c.r }
func (c *Context) Writer() http.ResponseWriter { return c.w }
func (c *Context) Context() context.Context    { return c.r.Context() }
func (c *Context) Param(key string) string     { return chi.URLParam(c.r, key) }
func (c *Context) Query(key string) string     { return c.r.URL.Query().Get(key) }

// Log is the request-scoped logger, tagged with the request id.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.r.Context()) }

// BindJSON decodes and validates the body into dest. When it returns false
// the response (400 or 422) has already been sent.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.r, dest)
	switch {
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
	case validate.HasErrors(errs):
		c.ValidationError(errs)
	default:
		return true
	}
	return false
}

// JSON writes v without the envelope.
func (c *Context) JSON(code int, v any) { c.send(code, func() { response.JSON(c.w, code, v) }) }

// Respond writes the envelope.
func (c *Context) Respond(code int, message string, data any) {
	c.send(code, func() { response.Write(c.w, code, message, data) })
}

func (c *Context) Success(data any)               { c.Respond(http.StatusOK, "", data) }
func (c *Context) Created(data any)               { c.Respond(http.StatusCreated, "", data) }
func (c *Context) Error(code int, message string) { c.Respond(code, message, nil) }

func (c *Context) ValidationError(errs map[string]string) {
	c.send(http.StatusUnprocessableEntity, func() { response.ValidationError(c.w, errs) })
}

func (c *Context) NotFound(format string, args ...any) {
	c.Error(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// InternalError logs err and answers a bare 500; the cause never reaches
// the client.
func (c *Context) InternalError(err error) {
	c.Log().Error("request failed", "error", err, "method", c.r.Method, "path", c.r.URL.Path)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}

// WrittenStatus is 0 until a response has been sent.
func (c *Context) WrittenStatus() int { return c.status }

func (c *Context) send(code int, write func()) {
	if c.status != 0 {
		c.Log().Warn("response already written", "status", c.status, "dropped", code)
		return
	}
	c.status = code
	write()
}
