package links

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// RouteBuilder builds online URLs for non-CMS slugs.
type RouteBuilder interface {
	Build(ctx context.Context, slug string) (string, error)
}

// URLKitRoutesOptions configures the go-urlkit backed route builder.
type URLKitRoutesOptions struct {
	Manager *urlkit.RouteManager
	// Group is a dotted group path such as "frontend" or "frontend.es".
	Group     string
	Route     string
	SlugParam string
}

// URLKitRoutes builds URLs from a go-urlkit route, passing the slug as a
// route parameter.
type URLKitRoutes struct {
	manager   *urlkit.RouteManager
	groupPath string
	route     string
	slugParam string

	once  sync.Once
	group *urlkit.Group
	err   error
}

// NewURLKitRoutes constructs a route builder. Defaults: route "page", slug
// parameter "slug".
func NewURLKitRoutes(opts URLKitRoutesOptions) *URLKitRoutes {
	if strings.TrimSpace(opts.Route) == "" {
		opts.Route = "page"
	}
	if strings.TrimSpace(opts.SlugParam) == "" {
		opts.SlugParam = "slug"
	}
	return &URLKitRoutes{
		manager:   opts.Manager,
		groupPath: strings.TrimSpace(opts.Group),
		route:     strings.TrimSpace(opts.Route),
		slugParam: strings.TrimSpace(opts.SlugParam),
	}
}

func (r *URLKitRoutes) Build(_ context.Context, slug string) (string, error) {
	group, err := r.resolveGroup()
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, r.route)
	if err != nil {
		return "", err
	}
	builder.WithParam(r.slugParam, strings.Trim(slug, "/"))
	return builder.Build()
}

func (r *URLKitRoutes) resolveGroup() (*urlkit.Group, error) {
	r.once.Do(func() {
		if r.manager == nil {
			r.err = fmt.Errorf("links: route manager not configured")
			return
		}
		parts := strings.Split(r.groupPath, ".")
		if r.groupPath == "" || len(parts) == 0 {
			r.err = fmt.Errorf("links: route group is required")
			return
		}
		current, err := lookupGroup(r.manager, parts[0])
		for _, part := range parts[1:] {
			if err != nil {
				break
			}
			current, err = lookupChildGroup(current, part)
		}
		r.group, r.err = current, err
	})
	return r.group, r.err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("links: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("links: urlkit route %q: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("links: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("links: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("links: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}
