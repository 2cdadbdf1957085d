// Package router wraps chi with named routes and prefix groups.
//
//	r := router.New()
//	api := r.Group("/api")
//	api.Get("/basket", "basket.show", handler)
//	url, _ := r.URL("projects.show", map[string]string{"project": "floating-shelf"})
package router

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one named route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Router owns the chi mux and the name table shared by every group.
type Router struct {
	base *Group
	mux  chi.Router

	mu    sync.RWMutex
	named map[string]RouteInfo
}

// Group registers routes under a path prefix with its own middleware stack.
type Group struct {
	root   *Router
	prefix string
	mws    []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), named: make(map[string]RouteInfo)}
	r.base = &Group{root: r, prefix: "/"}
	return r
}

func (r *Router) Group(prefix string, mws ...Middleware) *Group { return r.base.Group(prefix, mws...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Get(path, name, h, mws...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Post(path, name, h, mws...)
}

func (r *Router) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Put(path, name, h, mws...)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.base.Delete(path, name, h, mws...)
}

func (r *Router) Handler() http.Handler { return r.mux }

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) { r.mux.ServeHTTP(w, req) }

// Use adds global middleware. chi panics if this follows a route.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.named[name]
	return info.Path, ok
}

// URL fills the {params} of the route called name.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}
	return path, nil
}

// Routes lists the named routes ordered by path, then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := make([]RouteInfo, 0, len(r.named))
	for _, info := range r.named {
		out = append(out, info)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b RouteInfo) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})
	return out
}

// Group derives a child whose prefix and middleware extend g's.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{
		root:   g.root,
		prefix: joinPath(g.prefix, prefix),
		mws:    append(slices.Clone(g.mws), mws...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodGet, path, name, h, mws)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPost, path, name, h, mws)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPut, path, name, h, mws)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodDelete, path, name, h, mws)
}

func (g *Group) handle(method, path, name string, h http.Handler, mws []Middleware) {
	full := joinPath(g.prefix, path)
	stack := append(slices.Clone(g.mws), mws...)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	g.root.mux.Method(method, full, h)

	if name == "" {
		return
	}
	g.root.mu.Lock()
	g.root.named[name] = RouteInfo{Method: method, Path: full, Name: name}
	g.root.mu.Unlock()
}

// joinPath joins segments with single slashes; the result always starts
// with "/" and never ends with one unless it is the root.
func joinPath(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
