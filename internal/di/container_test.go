package di

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-publish/internal/logging/gologger"
	"github.com/goliatone/go-publish/internal/resources"
	"github.com/goliatone/go-publish/internal/runtimeconfig"
	"github.com/goliatone/go-publish/pkg/testsupport"
	pubresources "github.com/goliatone/go-publish/resources"
)

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.RootDir = t.TempDir()
	return cfg
}

func TestNewContainerDefaultsToMemoryStorage(t *testing.T) {
	container, err := NewContainer(testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.Repository().(*resources.MemoryRepository); !ok {
		t.Fatalf("expected memory repository, got %T", container.Repository())
	}
	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider when the logger feature is off")
	}
	if container.ThemePass() == nil || container.BreadcrumbBuilder() == nil || container.AllocatorService() == nil {
		t.Fatal("expected every default feature to be wired")
	}
	if container.ThemeWatcher() != nil {
		t.Fatal("expected no watcher unless configured")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = "sideways"
	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrModeInvalid) {
		t.Fatalf("expected ErrModeInvalid, got %v", err)
	}
}

func TestNewContainerSkipsDisabledFeatures(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features = runtimeconfig.Features{}
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.ThemePass() != nil || container.BreadcrumbBuilder() != nil || container.AllocatorService() != nil {
		t.Fatal("expected disabled features to stay nil")
	}
	if container.LinkResolver() == nil || container.PathResolver() == nil {
		t.Fatal("expected core resolvers regardless of features")
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Logger = true
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.loggerProvider.(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}
}

func TestNewContainerOpensSQLiteStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = runtimeconfig.StorageConfig{
		Driver:  runtimeconfig.StorageBun,
		Dialect: runtimeconfig.DialectSQLite,
		DSN:     fmt.Sprintf("file:publish_container_%d?mode=memory&cache=shared", time.Now().UnixNano()),
	}
	cfg.Cache.Enabled = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.Repository().(*resources.BunRepository); !ok {
		t.Fatalf("expected bun repository, got %T", container.Repository())
	}
	if !container.ownsDB || container.cacheService == nil {
		t.Fatal("expected owned database with cache service")
	}

	ctx := context.Background()
	repo := container.Repository().(*resources.BunRepository)
	page := &pubresources.Resource{ID: "p1", Type: pubresources.TypePage, Title: "Intro", Page: &pubresources.PageProperties{}}
	if err := repo.PutResource(ctx, page, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	link, err := container.LinkResolver().Resolve(ctx, page, "p1", pubresources.RenderHTML)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if link.URL != "" {
		t.Fatalf("expected identity link, got %q", link.URL)
	}
}

func TestWithBunDBIsNotClosedByContainer(t *testing.T) {
	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	container, err := NewContainer(testConfig(t), WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("expected caller database to stay open: %v", err)
	}
}

func TestConfigureLinksBuildsURLKitRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = pubresources.ModeOnline
	cfg.BaseURL = "https://example.com"
	cfg.Routes.Group = "frontend"
	cfg.Routes.URLKit = &urlkit.Config{Groups: []urlkit.GroupConfig{{
		Name:    "frontend",
		BaseURL: "https://example.com",
		Paths:   map[string]string{"page": "/pages/:slug"},
	}}}

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.RouteManager() == nil || container.routeBuilder == nil {
		t.Fatal("expected urlkit routes to be configured")
	}
}
