package breadcrumbs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-publish/internal/links"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

// PlaceholderURL is used for items whose link cannot be resolved.
const PlaceholderURL = "#"

var (
	ErrRepositoryRequired = errors.New("breadcrumbs: resource repository is required")
	ErrLinksRequired      = errors.New("breadcrumbs: link resolver is required")
	ErrSourceRequired     = errors.New("breadcrumbs: source resource is required")
	// ErrCategoryDepthExceeded is returned when a CMS slug nests deeper than
	// the available category labels.
	ErrCategoryDepthExceeded = errors.New("breadcrumbs: cms slug nests deeper than the category labels")
)

// Option configures a Builder.
type Option func(*Builder)

// WithRenderKind selects the render kind item links point to.
func WithRenderKind(kind resources.RenderKind) Option {
	return func(b *Builder) {
		b.kind = kind.OrDefault()
	}
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder assembles breadcrumb trails from the resource ancestry.
type Builder struct {
	repo   interfaces.ResourceRepository
	links  links.Resolver
	kind   resources.RenderKind
	logger interfaces.Logger
}

// NewBuilder constructs a breadcrumb builder.
func NewBuilder(repo interfaces.ResourceRepository, resolver links.Resolver, opts ...Option) (*Builder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if resolver == nil {
		return nil, ErrLinksRequired
	}
	b := &Builder{
		repo:   repo,
		links:  resolver,
		kind:   resources.DefaultRenderKind,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Build returns the trail for from. The walk covers from and its ancestors up
// to and including the first CMS page; a CMS page replaces the rest of the
// trail with items derived from its custom slug.
func (b *Builder) Build(ctx context.Context, from *resources.Resource) (Breadcrumb, error) {
	if from == nil {
		return Breadcrumb{}, ErrSourceRequired
	}
	ancestry, err := b.repo.GetResourceAncestry(ctx, from.ID)
	if err != nil {
		return Breadcrumb{}, err
	}
	if len(ancestry) == 0 {
		return Breadcrumb{}, nil
	}

	walk := takeUntilCMS(append([]*resources.Resource{from}, ancestry...))

	items := make([]Item, 0, len(walk)+resources.MaxCategoryDepth)
	for i, node := range walk {
		item, err := b.resourceItem(ctx, from, node)
		if err != nil {
			return Breadcrumb{}, err
		}
		if i == 0 {
			item.Traits |= TraitCurrent
		}
		items = append(items, item)
	}

	if cms, ok := walk[len(walk)-1].CMS(); ok {
		synthetic, err := slugItems(cms)
		if err != nil {
			b.logger.Error("breadcrumbs.cms.depth_exceeded", "resource_id", walk[len(walk)-1].ID, "slug", cms.CustomSlug)
			return Breadcrumb{}, err
		}
		items = append(items, synthetic...)
	}

	reverse(items)
	return Breadcrumb{Trail: items}, nil
}

func (b *Builder) resourceItem(ctx context.Context, from, node *resources.Resource) (Item, error) {
	item := Item{Type: ItemType(node.Type), Text: node.Title}

	link, err := b.links.Resolve(ctx, from, node.ID, b.kind)
	switch {
	case err == nil:
		item.URL = link.URL
	case errors.Is(err, links.ErrNotFound):
		b.logger.Debug("breadcrumbs.link.placeholder", "from", from.ID, "to", node.ID)
		item.URL = PlaceholderURL
	default:
		return Item{}, err
	}

	if thumb, ok := node.Thumbnail(); ok {
		switch thumb.Kind {
		case resources.ThumbnailEmoji:
			item.Traits |= TraitEmojiIcon
			item.Data = thumb.Value
		case resources.ThumbnailImage:
			item.Traits |= TraitImageIcon
			item.Data = thumb.Value
		}
	}
	return item, nil
}

func takeUntilCMS(walk []*resources.Resource) []*resources.Resource {
	for i, node := range walk {
		if node.IsCMSPage() {
			return walk[:i+1]
		}
	}
	return walk
}

// slugItems derives category items from a CMS slug, deepest first. The last
// segment names the page itself and yields no item.
func slugItems(cms *resources.CMSProperties) ([]Item, error) {
	segments := splitSlug(cms.CustomSlug)
	if len(segments) < 2 {
		return nil, nil
	}
	deepest := len(segments) - 2
	if deepest >= resources.MaxCategoryDepth {
		return nil, fmt.Errorf("%w: %d levels in %q", ErrCategoryDepthExceeded, len(segments), cms.CustomSlug)
	}

	items := make([]Item, 0, deepest+1)
	for idx := deepest; idx >= 0; idx-- {
		label, _ := cms.Category(idx)
		if strings.TrimSpace(label) == "" {
			label = segments[idx]
		}
		trait := TraitCategory
		if idx == 0 {
			trait = TraitRoot
		}
		items = append(items, Item{
			Type:   ItemCategory,
			Traits: trait,
			Text:   label,
			URL:    strings.Join(segments[:idx+1], "/"),
		})
	}
	return items, nil
}

func splitSlug(slug string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(slug), "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func reverse(items []Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
