package publish

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repocache "github.com/goliatone/go-repository-cache/cache"
	command "github.com/goliatone/go-command"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-publish/internal/allocator"
	"github.com/goliatone/go-publish/internal/breadcrumbs"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/di"
	"github.com/goliatone/go-publish/internal/links"
	"github.com/goliatone/go-publish/internal/paths"
	internalresources "github.com/goliatone/go-publish/internal/resources"
	"github.com/goliatone/go-publish/internal/themes"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

var (
	// ErrThemesDisabled is returned by theme helpers when the themes feature is off.
	ErrThemesDisabled = errors.New("publish: themes feature is disabled")
	// ErrThemeWatchDisabled is returned by WatchThemes unless Themes.Watch is set.
	ErrThemeWatchDisabled  = errors.New("publish: theme watching is not configured")
	ErrBreadcrumbsDisabled = errors.New("publish: breadcrumbs feature is disabled")
	ErrAllocatorDisabled   = errors.New("publish: allocator feature is disabled")
	ErrRepositoryReadOnly  = errors.New("publish: resource store does not accept writes")
)

// PathResolver exports the repository path resolver.
type PathResolver = *paths.Resolver

// Profile exports the per-type folder layout.
type Profile = paths.Profile

// FolderRule exports the layout rule of one resource type.
type FolderRule = paths.FolderRule

// LinkResolver exports the cross reference resolver contract.
type LinkResolver = links.Resolver

// Link exports a resolved cross reference.
type Link = links.Link

// ThemePass exports the per render pass theme cache.
type ThemePass = *themes.Pass

// TokenSet exports merged theme tokens for one output folder.
type TokenSet = *themes.TokenSet

// BreadcrumbBuilder exports the breadcrumb builder.
type BreadcrumbBuilder = *breadcrumbs.Builder

// Breadcrumb exports a built navigation trail.
type Breadcrumb = breadcrumbs.Breadcrumb

// BreadcrumbItem exports one breadcrumb entry.
type BreadcrumbItem = breadcrumbs.Item

// AllocatorService exports the render path allocator contract.
type AllocatorService = allocator.Service

// AllocationRequest exports the allocator request.
type AllocationRequest = allocator.Request

// AllocationResult exports the allocator result.
type AllocationResult = allocator.Result

// AllocateCommand exports the go-command message for allocation batches.
type AllocateCommand = commands.AllocateCommand

// WatchThemesCommand exports the go-command message that runs the theme watcher.
type WatchThemesCommand = commands.WatchThemesCommand

// ResourceStore exports the repository contract used by every resolver.
type ResourceStore = interfaces.ResourceStore

// MemoryRepository exports the in-memory resource store.
type MemoryRepository = internalresources.MemoryRepository

// NewMemoryRepository constructs an empty in-memory resource store.
func NewMemoryRepository() *MemoryRepository {
	return internalresources.NewMemoryRepository()
}

// Option customises module wiring.
type Option = di.Option

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithRepository replaces the configured storage with a caller supplied store.
func WithRepository(repo ResourceStore) Option {
	return di.WithRepository(repo)
}

// WithBunDB supplies a caller managed database for bun storage.
func WithBunDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

// WithCache overrides the cache service used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return di.WithCache(service, serializer)
}

// WithRouteBuilder overrides the online route builder.
func WithRouteBuilder(builder links.RouteBuilder) Option {
	return di.WithRouteBuilder(builder)
}

// Module represents the top level publication runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a publication module for cfg.RootDir.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, wrapConstructionError(err)
	}
	return &Module{container: container}, nil
}

// Load reads a YAML configuration file and constructs a module from it.
func Load(path string, opts ...Option) (*Module, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "publish: unable to load configuration").
			WithTextCode("CONFIG_LOAD_FAILED")
	}
	return New(cfg, opts...)
}

func wrapConstructionError(err error) error {
	var invalid *paths.InvalidConfigurationError
	switch {
	case errors.As(err, &invalid):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "publish: path configuration is invalid").
			WithTextCode("INVALID_PATH_CONFIGURATION")
	default:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "publish: module configuration is invalid").
			WithTextCode("INVALID_CONFIGURATION")
	}
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Paths returns the repository path resolver.
func (m *Module) Paths() PathResolver {
	return m.container.PathResolver()
}

// Links returns the cross reference resolver for the configured mode.
func (m *Module) Links() LinkResolver {
	return m.container.LinkResolver()
}

// Themes returns the theme cache, nil when themes are disabled.
func (m *Module) Themes() ThemePass {
	return m.container.ThemePass()
}

// Breadcrumbs returns the breadcrumb builder, nil when disabled.
func (m *Module) Breadcrumbs() BreadcrumbBuilder {
	return m.container.BreadcrumbBuilder()
}

// Allocator returns the render path allocator, nil when disabled.
func (m *Module) Allocator() AllocatorService {
	return m.container.AllocatorService()
}

// Repository returns the resource store.
func (m *Module) Repository() ResourceStore {
	return m.container.Repository()
}

// PutResource stores res under parentID when the store accepts writes.
func (m *Module) PutResource(ctx context.Context, res *resources.Resource, parentID string) error {
	writer, ok := m.container.Repository().(interfaces.ResourceWriter)
	if !ok {
		return ErrRepositoryReadOnly
	}
	return writer.PutResource(ctx, res, parentID)
}

// RegisterContentObject records that objectID is enclosed by resourceID.
func (m *Module) RegisterContentObject(ctx context.Context, objectID, resourceID string) error {
	writer, ok := m.container.Repository().(interfaces.ResourceWriter)
	if !ok {
		return ErrRepositoryReadOnly
	}
	return writer.RegisterContentObject(ctx, objectID, resourceID)
}

// ResolveLink resolves toID as seen from the output of from.
func (m *Module) ResolveLink(ctx context.Context, from *resources.Resource, toID string, kind resources.RenderKind) (Link, error) {
	return m.container.LinkResolver().Resolve(ctx, from, toID, kind)
}

// ThemeTokens merges the tokens of ids for output written to folder. The
// configured default themes are used when ids is empty.
func (m *Module) ThemeTokens(folder string, ids ...string) (TokenSet, error) {
	pass := m.container.ThemePass()
	if pass == nil {
		return nil, ErrThemesDisabled
	}
	if len(ids) == 0 {
		ids = m.container.Config.Themes.Defaults
	}
	return pass.Tokens(folder, ids...)
}

// BuildBreadcrumb builds the navigation trail of from.
func (m *Module) BuildBreadcrumb(ctx context.Context, from *resources.Resource) (Breadcrumb, error) {
	builder := m.container.BreadcrumbBuilder()
	if builder == nil {
		return Breadcrumb{}, ErrBreadcrumbsDisabled
	}
	return builder.Build(ctx, from)
}

// Allocate plans output paths for the requested resources.
func (m *Module) Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	svc := m.container.AllocatorService()
	if svc == nil {
		return nil, ErrAllocatorDisabled
	}
	return svc.Allocate(ctx, req)
}

// AllocateCommands returns a go-command handler for allocation batches.
func (m *Module) AllocateCommands() (command.Commander[AllocateCommand], error) {
	handler := m.container.AllocateHandler()
	if handler == nil {
		return nil, ErrAllocatorDisabled
	}
	return handler, nil
}

// WatchThemes blocks, dropping cached theme chains on theme file edits until
// ctx is done.
func (m *Module) WatchThemes(ctx context.Context) error {
	handler := m.container.WatchThemesHandler()
	if handler == nil {
		return ErrThemeWatchDisabled
	}
	if err := handler.Execute(ctx, WatchThemesCommand{}); err != nil {
		return fmt.Errorf("publish: theme watcher: %w", err)
	}
	return nil
}

// Close releases watchers and any database the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
