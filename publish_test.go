package publish_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/pkg/testsupport"
	"github.com/goliatone/go-publish/resources"
)

func newModule(t *testing.T, mutate func(*publish.Config)) (*publish.Module, string) {
	t.Helper()
	root := t.TempDir()
	err := testsupport.WriteTree(root, map[string]string{
		"themes/base/theme.json":   `{"id":"base","tokens":{"color":{"local":"blue","remote":"navy"}}}`,
		"themes/base/css/site.css": "body{}",
		"themes/brand/theme.yaml":  "id: brand\nbase: base\ntokens:\n  color:\n    local: red\n",
	})
	if err != nil {
		t.Fatalf("write tree: %v", err)
	}

	cfg := publish.DefaultConfig()
	cfg.RootDir = root
	cfg.Themes.Defaults = []string{"brand"}
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := publish.New(cfg)
	if err != nil {
		t.Fatalf("publish.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module, root
}

func seed(t *testing.T, module *publish.Module) (ws, p1, p2 *resources.Resource) {
	t.Helper()
	ctx := context.Background()
	ws = &resources.Resource{ID: "ws", Type: resources.TypeWorkspace, Title: "Home"}
	p1 = &resources.Resource{ID: "p1", Type: resources.TypePage, Title: "Getting Started", Page: &resources.PageProperties{}}
	p2 = &resources.Resource{ID: "p2", Type: resources.TypePage, Title: "Overview", Page: &resources.PageProperties{}}
	for _, item := range []struct {
		res    *resources.Resource
		parent string
	}{{ws, ""}, {p1, "ws"}, {p2, "ws"}} {
		if err := module.PutResource(ctx, item.res, item.parent); err != nil {
			t.Fatalf("put %s: %v", item.res.ID, err)
		}
	}
	if err := module.RegisterContentObject(ctx, "block-1", "p1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	return ws, p1, p2
}

func TestModuleEndToEndOffline(t *testing.T) {
	module, _ := newModule(t, nil)
	ctx := context.Background()
	ws, p1, p2 := seed(t, module)

	link, err := module.ResolveLink(ctx, p2, "p1", resources.RenderHTML)
	if err != nil {
		t.Fatalf("forward link: %v", err)
	}
	if link.URL != "../p1/getting_started.html" {
		t.Fatalf("unexpected forward link %q", link.URL)
	}

	result, err := module.Allocate(ctx, publish.AllocationRequest{ResourceIDs: []string{"ws", "p1", "p2"}})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if result.Allocated != 3 {
		t.Fatalf("expected 3 allocations, got %+v", result)
	}

	link, err = module.ResolveLink(ctx, p1, "ws", resources.RenderHTML)
	if err != nil {
		t.Fatalf("workspace link after allocation: %v", err)
	}
	if link.URL != "../../home.html" {
		t.Fatalf("unexpected workspace link %q", link.URL)
	}

	link, err = module.ResolveLink(ctx, p2, "block-1", resources.RenderHTML)
	if err != nil {
		t.Fatalf("block link: %v", err)
	}
	if link.URL != "../p1/getting_started.html#block-1" {
		t.Fatalf("unexpected block link %q", link.URL)
	}

	crumb, err := module.BuildBreadcrumb(ctx, p1)
	if err != nil {
		t.Fatalf("breadcrumb: %v", err)
	}
	if len(crumb.Trail) != 2 || crumb.Trail[0].Text != ws.Title || crumb.Trail[1].Text != p1.Title {
		t.Fatalf("unexpected trail %+v", crumb.Trail)
	}

	tokens, err := module.ThemeTokens("pages/p1")
	if err != nil {
		t.Fatalf("theme tokens: %v", err)
	}
	color, err := tokens.Lookup("color")
	if err != nil || color != "red" {
		t.Fatalf("expected brand override, got %q %v", color, err)
	}
	css, err := tokens.Lookup("theme://css/site.css")
	if err != nil || css != "../../themes/base/css/site.css" {
		t.Fatalf("unexpected css reference %q %v", css, err)
	}
}

func TestModuleOnlineLinks(t *testing.T) {
	module, _ := newModule(t, func(cfg *publish.Config) {
		cfg.Mode = resources.ModeOnline
		cfg.BaseURL = "https://example.com"
	})
	_, _, p2 := seed(t, module)

	link, err := module.ResolveLink(context.Background(), p2, "p1", resources.RenderHTML)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if link.URL != "https://example.com/pages/p1/getting_started.html" {
		t.Fatalf("unexpected online link %q", link.URL)
	}
}

func TestNewWrapsConfigurationErrors(t *testing.T) {
	cfg := publish.DefaultConfig()
	_, err := publish.New(cfg)
	if !errors.Is(err, publish.ErrRootDirRequired) {
		t.Fatalf("expected ErrRootDirRequired, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category error, got %T %v", err, err)
	}

	cfg.RootDir = "/definitely/not/a/real/publish/root"
	if _, err := publish.New(cfg); err == nil {
		t.Fatal("expected missing root to fail construction")
	}
}

func TestDisabledFeaturesReportErrors(t *testing.T) {
	module, _ := newModule(t, func(cfg *publish.Config) {
		cfg.Features = publish.Features{}
		cfg.Themes.Defaults = nil
	})
	ctx := context.Background()
	if _, err := module.ThemeTokens("pages"); !errors.Is(err, publish.ErrThemesDisabled) {
		t.Fatalf("expected ErrThemesDisabled, got %v", err)
	}
	if _, err := module.BuildBreadcrumb(ctx, &resources.Resource{ID: "x"}); !errors.Is(err, publish.ErrBreadcrumbsDisabled) {
		t.Fatalf("expected ErrBreadcrumbsDisabled, got %v", err)
	}
	if _, err := module.Allocate(ctx, publish.AllocationRequest{}); !errors.Is(err, publish.ErrAllocatorDisabled) {
		t.Fatalf("expected ErrAllocatorDisabled, got %v", err)
	}
	if err := module.WatchThemes(ctx); !errors.Is(err, publish.ErrThemeWatchDisabled) {
		t.Fatalf("expected ErrThemeWatchDisabled, got %v", err)
	}
}

func TestAllocateCommandsDispatchThroughGoCommand(t *testing.T) {
	module, _ := newModule(t, nil)
	seed(t, module)

	handler, err := module.AllocateCommands()
	if err != nil {
		t.Fatalf("allocate commands: %v", err)
	}
	var result *publish.AllocationResult
	err = handler.Execute(context.Background(), publish.AllocateCommand{
		ResourceIDs:    []string{"p1", "p2"},
		ResultCallback: func(r *publish.AllocationResult) { result = r },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result == nil || result.Allocated != 2 {
		t.Fatalf("expected two allocations, got %+v", result)
	}

	err = handler.Execute(context.Background(), publish.AllocateCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}
}

func TestWatchThemesStopsWithContext(t *testing.T) {
	module, _ := newModule(t, func(cfg *publish.Config) {
		cfg.Themes.Watch = true
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := module.WatchThemes(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected watcher error: %v", err)
	}
}

func TestSQLiteMigrationsMatchRepository(t *testing.T) {
	migrations, err := publish.DialectMigrationsFS("sqlite")
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	up, err := fs.ReadFile(migrations, "20260101000000_publish_tables.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(string(up)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	cfg := publish.DefaultConfig()
	cfg.RootDir = t.TempDir()
	module, err := publish.New(cfg, publish.WithBunDB(db))
	if err != nil {
		t.Fatalf("publish.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	seed(t, module)

	got, err := module.Repository().GetResource(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Getting Started" {
		t.Fatalf("unexpected resource %+v", got)
	}
	if _, err := module.Repository().GetResource(context.Background(), fmt.Sprintf("missing-%d", time.Now().UnixNano())); !resources.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
