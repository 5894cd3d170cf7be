package links

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-publish/internal/identity"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

// Link is a resolved cross reference. URL is empty when a resource links to
// itself.
type Link struct {
	URL    string
	Target *resources.Resource
}

// Resolver turns resource ids into addresses for the active output mode.
type Resolver interface {
	Resolve(ctx context.Context, from *resources.Resource, toID string, kind resources.RenderKind) (Link, error)
	Mode() resources.Mode
}

// PathLayout is the subset of the path resolver used to address targets.
type PathLayout interface {
	OutputFolder(res *resources.Resource) (string, error)
	CMSFilePath(res *resources.Resource, kind resources.RenderKind) (string, bool)
	PredictRenderEntry(res *resources.Resource, kind resources.RenderKind) (resources.RenderEntry, bool)
}

// Config selects the output mode.
type Config struct {
	Mode    resources.Mode
	BaseURL string
}

// Option configures the resolver.
type Option func(*resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRouteBuilder builds online URLs for non-CMS targets through routes
// instead of joining the base URL with the slug.
func WithRouteBuilder(routes RouteBuilder) Option {
	return func(r *resolver) {
		r.routes = routes
	}
}

type resolver struct {
	repo     interfaces.ResourceRepository
	layout   PathLayout
	strategy strategy
	routes   RouteBuilder
	logger   interfaces.Logger
}

// NewResolver builds the resolver for cfg.Mode.
func NewResolver(repo interfaces.ResourceRepository, layout PathLayout, cfg Config, opts ...Option) (Resolver, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if layout == nil {
		return nil, ErrLayoutRequired
	}
	r := &resolver{
		repo:   repo,
		layout: layout,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	switch cfg.Mode {
	case resources.ModeOffline, "":
		r.strategy = offlineStrategy{}
	case resources.ModeOnline:
		r.strategy = onlineStrategy{baseURL: cfg.BaseURL, routes: r.routes}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, cfg.Mode)
	}
	return r, nil
}

func (r *resolver) Mode() resources.Mode {
	return r.strategy.mode()
}

func (r *resolver) Resolve(ctx context.Context, from *resources.Resource, toID string, kind resources.RenderKind) (Link, error) {
	if from == nil {
		return Link{}, ErrSourceRequired
	}
	id := identity.Canonical(toID)
	if id == "" {
		return Link{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if identity.Equal(id, from.ID) {
		return Link{Target: from}, nil
	}

	target, err := r.repo.GetResource(ctx, id)
	if err == nil {
		return r.resolveResource(ctx, from, target, kind)
	}
	if !resources.IsNotFound(err) {
		return Link{}, err
	}

	parent, err := r.repo.TryGetParentResource(ctx, id)
	if err != nil {
		if resources.IsNotFound(err) {
			r.logger.Debug("links.target.missing", "from", from.ID, "to", id)
			return Link{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Link{}, err
	}
	link, err := r.Resolve(ctx, from, parent.ID, kind)
	if err != nil {
		return Link{}, err
	}
	link.URL = appendAnchor(link.URL, id)
	return link, nil
}

func (r *resolver) resolveResource(ctx context.Context, from, target *resources.Resource, kind resources.RenderKind) (Link, error) {
	kind = kind.OrDefault()
	var addr address

	if local, ok := r.layout.CMSFilePath(target, kind); ok {
		cms, _ := target.CMS()
		addr.cmsSlug = strings.TrimSpace(cms.CustomSlug)
		addr.cmsPath = local
	} else {
		entry, err := r.repo.GetRenderEntry(ctx, target.ID, kind)
		if err != nil {
			return Link{}, err
		}
		if entry == nil {
			predicted, ok := r.layout.PredictRenderEntry(target, kind)
			if !ok {
				r.logger.Warn("links.forward_reference.refused", "from", from.ID, "to", target.ID, "type", string(target.Type), "render_kind", string(kind))
				return Link{}, fmt.Errorf("%w: %s has no %s render yet", ErrNotFound, target.ID, kind)
			}
			r.logger.Debug("links.forward_reference.predicted", "to", target.ID, "path", predicted.LocalPath)
			entry = &predicted
		}
		addr.entry = entry
	}

	if r.strategy.mode() == resources.ModeOffline {
		folder, err := r.layout.OutputFolder(from)
		if err != nil {
			return Link{}, err
		}
		addr.fromFolder = folder
	}

	url, err := r.strategy.express(ctx, addr)
	if err != nil {
		return Link{}, err
	}
	return Link{URL: url, Target: target}, nil
}
