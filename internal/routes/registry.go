// Package routes holds the route permission table and registers handlers
// against it.
package routes

import (
	"embed"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry maps "METHOD /path" patterns to their auth level
type Registry struct {
	levels map[string]AuthLevel
}

// NewRegistry loads the embedded permission table
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/permissions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML. Unknown auth levels and duplicate
// entries are errors.
func Parse(data []byte) (*Registry, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permission table: %w", err)
	}

	r := &Registry{levels: make(map[string]AuthLevel, len(table.Routes))}
	for _, rule := range table.Routes {
		rule.Method = strings.ToUpper(strings.TrimSpace(rule.Method))
		if rule.Method == "" || !strings.HasPrefix(rule.Path, "/") {
			return nil, fmt.Errorf("malformed route %q", rule.Pattern())
		}
		switch rule.Auth {
		case Public, Required:
		default:
			return nil, fmt.Errorf("route %s: unknown auth level %q", rule.Pattern(), rule.Auth)
		}
		if _, dup := r.levels[rule.Pattern()]; dup {
			return nil, fmt.Errorf("route %s listed twice", rule.Pattern())
		}
		r.levels[rule.Pattern()] = rule.Auth
	}

	return r, nil
}

// Level returns the auth level of a pattern
func (r *Registry) Level(pattern string) (AuthLevel, bool) {
	level, ok := r.levels[pattern]
	return level, ok
}

// Patterns returns every pattern in the table, sorted
func (r *Registry) Patterns() []string {
	patterns := make([]string, 0, len(r.levels))
	for p := range r.levels {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Router registers handlers on a ServeMux, wrapping each one according to
// the permission table.
type Router struct {
	mux         *http.ServeMux
	registry    *Registry
	requireAuth func(http.Handler) http.Handler
	registered  map[string]bool
	errs        []error
}

func NewRouter(mux *http.ServeMux, registry *Registry, requireAuth func(http.Handler) http.Handler) *Router {
	return &Router{
		mux:         mux,
		registry:    registry,
		requireAuth: requireAuth,
		registered:  make(map[string]bool),
	}
}

// HandleFunc registers h for pattern. A pattern missing from the table is
// recorded as an error and not registered.
func (rt *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	level, ok := rt.registry.Level(pattern)
	if !ok {
		rt.errs = append(rt.errs, fmt.Errorf("route %s has no permission entry", pattern))
		return
	}

	var handler http.Handler = h
	if level == Required {
		handler = rt.requireAuth(handler)
	}
	rt.mux.Handle(pattern, handler)
	rt.registered[pattern] = true
}

// Verify reports routes registered without a table entry and table entries
// without a handler.
func (rt *Router) Verify() error {
	errs := append([]error(nil), rt.errs...)
	for _, p := range rt.registry.Patterns() {
		if !rt.registered[p] {
			errs = append(errs, fmt.Errorf("permission entry %s has no handler", p))
		}
	}
	return errors.Join(errs...)
}
