package resources

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-publish/internal/identity"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// BunRepository persists the resource graph and render records through
// go-repository-bun, with optional read caching.
type BunRepository struct {
	resources repository.Repository[*ResourceRecord]
	renders   repository.Repository[*RenderEntryRecord]
	objects   repository.Repository[*ContentObjectRecord]
	logger    interfaces.Logger
}

// BunOption configures a BunRepository.
type BunOption func(*BunRepository)

// WithBunLogger sets the repository logger.
func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(r *BunRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewBunRepository creates a repository without caching.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunRepositoryWithCache creates a repository whose resource and content
// object reads go through the cache. Render records are never cached because
// the render pass updates them while links are being resolved.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunOption) *BunRepository {
	resourceRepo := NewResourceRecordRepository(db)
	objectRepo := NewContentObjectRecordRepository(db)
	if cacheService != nil && serializer != nil {
		resourceRepo = repositorycache.New(resourceRepo, cacheService, serializer)
		objectRepo = repositorycache.New(objectRepo, cacheService, serializer)
	}
	r := &BunRepository{
		resources: resourceRepo,
		renders:   NewRenderEntryRecordRepository(db),
		objects:   objectRepo,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// PutResource inserts or updates res and its parent link.
func (r *BunRepository) PutResource(ctx context.Context, res *Resource, parentID string) error {
	if err := validateResource(res); err != nil {
		return err
	}
	record := toRecord(res, parentID)
	existing, err := r.resources.GetByID(ctx, record.ID.String())
	if err != nil {
		if mapped := mapRepositoryError(err, "resource", record.ExternalID); !isNotFound(mapped) {
			return mapped
		}
		_, err = r.resources.Create(ctx, record)
		return err
	}
	record.ID = existing.ID
	_, err = r.resources.Update(ctx, record)
	return mapRepositoryError(err, "resource", record.ExternalID)
}

// RegisterContentObject records that objectID is enclosed by resourceID.
func (r *BunRepository) RegisterContentObject(ctx context.Context, objectID, resourceID string) error {
	object := identity.Canonical(objectID)
	owner := identity.Canonical(resourceID)
	if object == "" || owner == "" {
		return ErrInvalidContentObject
	}
	record := &ContentObjectRecord{
		ID:         identity.ContentObjectUUID(object),
		ObjectID:   object,
		ResourceID: owner,
	}
	if _, err := r.objects.GetByID(ctx, record.ID.String()); err != nil {
		if mapped := mapRepositoryError(err, "content object", object); !isNotFound(mapped) {
			return mapped
		}
		_, err = r.objects.Create(ctx, record)
		return err
	}
	_, err := r.objects.Update(ctx, record)
	return mapRepositoryError(err, "content object", object)
}

func (r *BunRepository) GetResource(ctx context.Context, id string) (*Resource, error) {
	canonical := identity.Canonical(id)
	if canonical == "" {
		return nil, &NotFoundError{Resource: "resource", Key: id}
	}
	record, err := r.resources.GetByID(ctx, identity.ResourceUUID(canonical).String())
	if err != nil {
		return nil, mapRepositoryError(err, "resource", canonical)
	}
	return fromRecord(record), nil
}

func (r *BunRepository) GetResourceBySlug(ctx context.Context, slug string) (*Resource, error) {
	want := normalizeSlug(slug)
	if want == "" {
		return nil, &NotFoundError{Resource: "resource", Key: slug}
	}
	records, _, err := r.resources.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_cms = TRUE")
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.custom_slug = ?", want)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "resource", Key: slug}
	}
	return fromRecord(records[0]), nil
}

func (r *BunRepository) GetResourceAncestry(ctx context.Context, id string) ([]*Resource, error) {
	canonical := identity.Canonical(id)
	record, err := r.resources.GetByID(ctx, identity.ResourceUUID(canonical).String())
	if err != nil {
		return nil, mapRepositoryError(err, "resource", canonical)
	}

	visited := map[string]bool{record.ExternalID: true}
	var ancestry []*Resource
	for len(ancestry) < maxAncestryDepth {
		parentID := strings.TrimSpace(record.ParentID)
		if parentID == "" || visited[parentID] {
			break
		}
		parent, err := r.resources.GetByID(ctx, identity.ResourceUUID(parentID).String())
		if err != nil {
			mapped := mapRepositoryError(err, "resource", parentID)
			if isNotFound(mapped) {
				r.logger.Debug("resources.ancestry.dangling_parent", "resource_id", record.ExternalID, "parent_id", parentID)
				break
			}
			return nil, mapped
		}
		visited[parentID] = true
		ancestry = append(ancestry, fromRecord(parent))
		record = parent
	}
	return ancestry, nil
}

func (r *BunRepository) TryGetParentResource(ctx context.Context, objectID string) (*Resource, error) {
	object := identity.Canonical(objectID)
	if object == "" {
		return nil, &NotFoundError{Resource: "content object", Key: objectID}
	}
	record, err := r.objects.GetByIdentifier(ctx, object)
	if err != nil {
		return nil, mapRepositoryError(err, "content object", object)
	}
	return r.GetResource(ctx, record.ResourceID)
}

func (r *BunRepository) GetRenderEntry(ctx context.Context, resourceID string, kind RenderKind) (*RenderEntry, error) {
	record, err := r.renders.GetByID(ctx, identity.RenderEntryUUID(resourceID, normalizeKind(kind)).String())
	if err != nil {
		if isNotFound(mapRepositoryError(err, "render entry", resourceID)) {
			return nil, nil
		}
		return nil, err
	}
	return &RenderEntry{
		LocalPath: record.LocalPath,
		Slug:      record.Slug,
		Expected:  record.Expected,
	}, nil
}

func (r *BunRepository) SaveRenderEntry(ctx context.Context, resourceID string, kind RenderKind, entry RenderEntry) error {
	owner := identity.Canonical(resourceID)
	if owner == "" || strings.TrimSpace(entry.LocalPath) == "" {
		return ErrInvalidRenderEntry
	}
	record := &RenderEntryRecord{
		ID:         identity.RenderEntryUUID(owner, normalizeKind(kind)),
		ResourceID: owner,
		Kind:       normalizeKind(kind),
		LocalPath:  entry.LocalPath,
		Slug:       entry.Slug,
		Expected:   entry.Expected,
	}
	if _, err := r.renders.GetByID(ctx, record.ID.String()); err != nil {
		if mapped := mapRepositoryError(err, "render entry", owner); !isNotFound(mapped) {
			return mapped
		}
		_, err = r.renders.Create(ctx, record)
		return err
	}
	_, err := r.renders.Update(ctx, record)
	return mapRepositoryError(err, "render entry", owner)
}
