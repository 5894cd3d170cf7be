package di

import (
	"errors"
	"strings"
	"sync"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-publish/internal/allocator"
	"github.com/goliatone/go-publish/internal/breadcrumbs"
	"github.com/goliatone/go-publish/internal/commands"
	"github.com/goliatone/go-publish/internal/links"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/logging/gologger"
	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/internal/runtimeconfig"
	"github.com/goliatone/go-publish/internal/themes"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// Container wires the publication services for one repository root.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	repo         interfaces.ResourceStore
	pathResolver *paths.Resolver
	reservations *paths.Reservations
	existsFunc   paths.ExistsFunc

	routeManager *urlkit.RouteManager
	routeBuilder links.RouteBuilder
	linkResolver links.Resolver

	themePass    *themes.Pass
	themeWatcher *themes.Watcher

	breadcrumbs *breadcrumbs.Builder
	allocator   allocator.Service

	allocateHandler *commands.AllocateHandler
	watchHandler    *commands.WatchThemesHandler

	closeOnce sync.Once
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an externally managed database. The container never
// closes a database it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRepository replaces the configured storage with a caller supplied store.
func WithRepository(repo interfaces.ResourceStore) Option {
	return func(c *Container) {
		c.repo = repo
	}
}

// WithRouteBuilder overrides the online route builder.
func WithRouteBuilder(builder links.RouteBuilder) Option {
	return func(c *Container) {
		c.routeBuilder = builder
	}
}

// WithExistsFunc overrides the file existence probe used for conflicts.
func WithExistsFunc(fn paths.ExistsFunc) Option {
	return func(c *Container) {
		c.existsFunc = fn
	}
}

// NewContainer validates cfg and wires every enabled service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureStorage,
		c.configurePaths,
		c.configureLinks,
		c.configureThemes,
		c.configureBreadcrumbs,
		c.configureAllocator,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.logger.Debug("publish.container.ready",
		"root", c.pathResolver.Root(),
		"mode", string(cfg.Mode),
		"storage", cfg.StorageDriver(),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := gologger.NewProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")
	return nil
}

func (c *Container) configurePaths() error {
	opts := []paths.Option{
		paths.WithMaxConflictAttempts(c.Config.Allocator.MaxConflictAttempts),
		paths.WithLogger(logging.PathsLogger(c.loggerProvider)),
	}
	if c.existsFunc != nil {
		opts = append(opts, paths.WithExistsFunc(c.existsFunc))
	}
	resolver, err := paths.NewResolver(c.Config.RootDir, c.Config.EffectiveProfile(), opts...)
	if err != nil {
		return err
	}
	c.pathResolver = resolver
	c.reservations = paths.NewReservations(resolver, paths.WithPlaceholders(c.Config.Allocator.Placeholders))
	return nil
}

func (c *Container) configureLinks() error {
	if c.routeBuilder == nil && c.Config.Routes.URLKit != nil {
		c.routeManager = urlkit.NewRouteManager(c.Config.Routes.URLKit)
		c.routeBuilder = links.NewURLKitRoutes(links.URLKitRoutesOptions{
			Manager:   c.routeManager,
			Group:     strings.TrimSpace(c.Config.Routes.Group),
			Route:     strings.TrimSpace(c.Config.Routes.Route),
			SlugParam: strings.TrimSpace(c.Config.Routes.SlugParam),
		})
	}

	opts := []links.Option{links.WithLogger(logging.LinksLogger(c.loggerProvider))}
	if c.routeBuilder != nil {
		opts = append(opts, links.WithRouteBuilder(c.routeBuilder))
	}
	resolver, err := links.NewResolver(c.repo, c.pathResolver, links.Config{
		Mode:    c.Config.Mode,
		BaseURL: c.Config.BaseURL,
	}, opts...)
	if err != nil {
		return err
	}
	c.linkResolver = resolver
	return nil
}

func (c *Container) configureThemes() error {
	if !c.Config.Features.Themes {
		return nil
	}
	logger := logging.ThemesLogger(c.loggerProvider)
	loader, err := themes.NewLoader(themes.LoaderConfig{
		Root:      c.pathResolver.Root(),
		ThemesDir: c.Config.Themes.Dir,
		Mode:      c.Config.Mode,
	}, themes.WithLogger(logger))
	if err != nil {
		return err
	}
	c.themePass = themes.NewPass(loader)

	if c.Config.Themes.Watch {
		watcher, err := themes.NewWatcher(c.themePass, themes.WithWatcherLogger(logger))
		if err != nil {
			return err
		}
		c.themeWatcher = watcher
		c.watchHandler = commands.NewWatchThemesHandler(watcher,
			commands.WithLogger[commands.WatchThemesCommand](commands.CommandLogger(c.loggerProvider, "themes")),
		)
	}
	return nil
}

func (c *Container) configureBreadcrumbs() error {
	if !c.Config.Features.Breadcrumbs {
		return nil
	}
	builder, err := breadcrumbs.NewBuilder(c.repo, c.linkResolver,
		breadcrumbs.WithLogger(logging.BreadcrumbsLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.breadcrumbs = builder
	return nil
}

func (c *Container) configureAllocator() error {
	if !c.Config.Features.Allocator {
		return nil
	}
	svc, err := allocator.NewService(allocator.Config{
		Workers: c.Config.Allocator.Workers,
	}, allocator.Dependencies{
		Repository:   c.repo,
		Paths:        c.pathResolver,
		Reservations: c.reservations,
	}, allocator.WithLogger(logging.AllocatorLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.allocator = svc
	c.allocateHandler = commands.NewAllocateHandler(svc,
		commands.WithLogger[commands.AllocateCommand](commands.CommandLogger(c.loggerProvider, "allocator")),
	)
	return nil
}

// LoggerProvider exposes the provider backing module loggers. It is nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Repository returns the configured resource store.
func (c *Container) Repository() interfaces.ResourceStore {
	return c.repo
}

// BunDB returns the database backing bun storage, if any.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// PathResolver returns the repository path resolver.
func (c *Container) PathResolver() *paths.Resolver {
	return c.pathResolver
}

// Reservations returns the shared conflict reservation table.
func (c *Container) Reservations() *paths.Reservations {
	return c.reservations
}

// LinkResolver returns the cross reference resolver.
func (c *Container) LinkResolver() links.Resolver {
	return c.linkResolver
}

// RouteManager returns the go-urlkit manager built from configuration.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// ThemePass returns the theme cache, nil when themes are disabled.
func (c *Container) ThemePass() *themes.Pass {
	return c.themePass
}

// ThemeWatcher returns the theme watcher, nil unless watching is configured.
func (c *Container) ThemeWatcher() *themes.Watcher {
	return c.themeWatcher
}

// BreadcrumbBuilder returns the breadcrumb builder, nil when disabled.
func (c *Container) BreadcrumbBuilder() *breadcrumbs.Builder {
	return c.breadcrumbs
}

// AllocatorService returns the render allocator, nil when disabled.
func (c *Container) AllocatorService() allocator.Service {
	return c.allocator
}

// AllocateHandler returns the go-command handler for allocation batches, nil
// when the allocator is disabled.
func (c *Container) AllocateHandler() *commands.AllocateHandler {
	return c.allocateHandler
}

// WatchThemesHandler returns the go-command handler driving the theme watcher.
func (c *Container) WatchThemesHandler() *commands.WatchThemesHandler {
	return c.watchHandler
}

// Close releases the theme watcher and any database the container opened.
func (c *Container) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		if c.themeWatcher != nil {
			if err := c.themeWatcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if c.ownsDB && c.bunDB != nil {
			if err := c.bunDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
