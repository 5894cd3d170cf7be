package interfaces

import (
	"context"

	"github.com/goliatone/go-publish/resources"
)

// ResourceRepository is the read contract the resolvers consume. Lookups of
// unknown identifiers must return an error satisfying
// errors.As(err, **resources.NotFoundError).
type ResourceRepository interface {
	GetResource(ctx context.Context, id string) (*resources.Resource, error)
	GetResourceBySlug(ctx context.Context, slug string) (*resources.Resource, error)
	// GetResourceAncestry returns the ancestors of id, closest first. The
	// resource itself is not part of the result.
	GetResourceAncestry(ctx context.Context, id string) ([]*resources.Resource, error)
	// TryGetParentResource maps a lower level content object (block, row,
	// property) to its nearest enclosing resource.
	TryGetParentResource(ctx context.Context, objectID string) (*resources.Resource, error)
	// GetRenderEntry returns nil, nil when the render has not happened yet.
	GetRenderEntry(ctx context.Context, resourceID string, kind resources.RenderKind) (*resources.RenderEntry, error)
}

// RenderEntryWriter persists render records once a render completes.
type RenderEntryWriter interface {
	SaveRenderEntry(ctx context.Context, resourceID string, kind resources.RenderKind, entry resources.RenderEntry) error
}

// ResourceStore combines the read and write sides of a repository.
type ResourceStore interface {
	ResourceRepository
	RenderEntryWriter
}

// ResourceWriter is implemented by stores that accept resources directly.
// Stores backed by an external content system may omit it.
type ResourceWriter interface {
	PutResource(ctx context.Context, res *resources.Resource, parentID string) error
	RegisterContentObject(ctx context.Context, objectID, resourceID string) error
}
