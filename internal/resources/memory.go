package resources

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-publish/internal/identity"
)

// maxAncestryDepth guards ancestry walks against corrupted parent chains.
const maxAncestryDepth = 256

// MemoryRepository is an in-memory ResourceStore used by tests and by hosts
// that assemble the resource graph before a render pass.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Resource
	parents map[string]string
	objects map[string]string
	renders map[string]RenderEntry
}

// NewMemoryRepository constructs an empty memory-backed repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*Resource),
		parents: make(map[string]string),
		objects: make(map[string]string),
		renders: make(map[string]RenderEntry),
	}
}

// PutResource inserts or replaces res. parentID may be empty for top level
// resources.
func (r *MemoryRepository) PutResource(_ context.Context, res *Resource, parentID string) error {
	if err := validateResource(res); err != nil {
		return err
	}
	cloned := res.Clone()
	cloned.ID = identity.Canonical(res.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	if parent := identity.Canonical(parentID); parent != "" {
		r.parents[cloned.ID] = parent
	} else {
		delete(r.parents, cloned.ID)
	}
	return nil
}

// RegisterContentObject records that objectID is enclosed by resourceID.
func (r *MemoryRepository) RegisterContentObject(_ context.Context, objectID, resourceID string) error {
	object := identity.Canonical(objectID)
	owner := identity.Canonical(resourceID)
	if object == "" || owner == "" {
		return ErrInvalidContentObject
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[object] = owner
	return nil
}

func (r *MemoryRepository) GetResource(_ context.Context, id string) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(identity.Canonical(id))
}

func (r *MemoryRepository) GetResourceBySlug(_ context.Context, slug string) (*Resource, error) {
	want := normalizeSlug(slug)
	r.mu.RLock()
	defer r.mu.RUnlock()

	if want != "" {
		for _, res := range r.byID {
			if cms, ok := res.CMS(); ok && normalizeSlug(cms.CustomSlug) == want {
				return res.Clone(), nil
			}
		}
	}
	return nil, &NotFoundError{Resource: "resource", Key: slug}
}

func (r *MemoryRepository) GetResourceAncestry(_ context.Context, id string) ([]*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current := identity.Canonical(id)
	if _, ok := r.byID[current]; !ok {
		return nil, &NotFoundError{Resource: "resource", Key: id}
	}

	visited := map[string]bool{current: true}
	var ancestry []*Resource
	for len(ancestry) < maxAncestryDepth {
		parent, ok := r.parents[current]
		if !ok || visited[parent] {
			break
		}
		res, ok := r.byID[parent]
		if !ok {
			break
		}
		visited[parent] = true
		ancestry = append(ancestry, res.Clone())
		current = parent
	}
	return ancestry, nil
}

func (r *MemoryRepository) TryGetParentResource(_ context.Context, objectID string) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.objects[identity.Canonical(objectID)]
	if !ok {
		return nil, &NotFoundError{Resource: "content object", Key: objectID}
	}
	return r.lookup(owner)
}

func (r *MemoryRepository) GetRenderEntry(_ context.Context, resourceID string, kind RenderKind) (*RenderEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.renders[renderKey(resourceID, kind)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *MemoryRepository) SaveRenderEntry(_ context.Context, resourceID string, kind RenderKind, entry RenderEntry) error {
	if identity.Canonical(resourceID) == "" || strings.TrimSpace(entry.LocalPath) == "" {
		return ErrInvalidRenderEntry
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders[renderKey(resourceID, kind)] = entry
	return nil
}

func (r *MemoryRepository) lookup(id string) (*Resource, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "resource", Key: id}
	}
	return res.Clone(), nil
}

func renderKey(resourceID string, kind RenderKind) string {
	return identity.Canonical(resourceID) + "|" + normalizeKind(kind)
}

func normalizeSlug(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}
