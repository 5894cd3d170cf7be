package links

import (
	"context"
	"strings"

	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/resources"
)

// address carries what a strategy needs to express a resolved target.
type address struct {
	fromFolder string
	entry      *resources.RenderEntry
	cmsSlug    string
	// cmsPath is the slug addressed file a CMS target is written to.
	cmsPath    string
}

// strategy renders an address for one output mode.
type strategy interface {
	mode() resources.Mode
	express(ctx context.Context, addr address) (string, error)
}

// offlineStrategy expresses targets as paths relative to the source folder.
type offlineStrategy struct{}

func (offlineStrategy) mode() resources.Mode { return resources.ModeOffline }

func (offlineStrategy) express(_ context.Context, addr address) (string, error) {
	if addr.cmsPath != "" {
		return paths.Relative(addr.fromFolder, addr.cmsPath), nil
	}
	return paths.Relative(addr.fromFolder, addr.entry.LocalPath), nil
}

// onlineStrategy expresses targets as absolute URLs under the base URL.
type onlineStrategy struct {
	baseURL string
	routes  RouteBuilder
}

func (onlineStrategy) mode() resources.Mode { return resources.ModeOnline }

func (s onlineStrategy) express(ctx context.Context, addr address) (string, error) {
	if addr.cmsSlug != "" {
		return JoinURL(s.baseURL, addr.cmsSlug), nil
	}
	if s.routes != nil {
		return s.routes.Build(ctx, addr.entry.Slug)
	}
	return JoinURL(s.baseURL, addr.entry.Slug), nil
}

// JoinURL joins base and slug with exactly one slash between them. An empty
// base yields a root-relative URL.
func JoinURL(base, slug string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + strings.TrimLeft(strings.TrimSpace(slug), "/")
}

func appendAnchor(url, anchor string) string {
	if anchor == "" || strings.Contains(url, "#") {
		return url
	}
	return url + "#" + anchor
}
