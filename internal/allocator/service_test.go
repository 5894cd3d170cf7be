package allocator_test

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-publish/internal/allocator"
	"github.com/goliatone/go-publish/internal/links"
	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/internal/resources"
	pubresources "github.com/goliatone/go-publish/resources"
)

type harness struct {
	repo   *resources.MemoryRepository
	layout *paths.Resolver
}

func newHarness(t *testing.T, items ...*pubresources.Resource) *harness {
	t.Helper()
	layout, err := paths.NewResolver(t.TempDir(), paths.DefaultProfile())
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	repo := resources.NewMemoryRepository()
	for _, res := range items {
		if err := repo.PutResource(context.Background(), res, ""); err != nil {
			t.Fatalf("put %s: %v", res.ID, err)
		}
	}
	return &harness{repo: repo, layout: layout}
}

func (h *harness) service(t *testing.T, cfg allocator.Config) allocator.Service {
	t.Helper()
	svc, err := allocator.NewService(cfg, allocator.Dependencies{
		Repository: h.repo,
		Paths:      h.layout,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func workspace(id, title string) *pubresources.Resource {
	return &pubresources.Resource{ID: id, Type: pubresources.TypeWorkspace, Title: title}
}

func TestAllocateResolvesSiblingConflicts(t *testing.T) {
	h := newHarness(t, workspace("w1", "Home"), workspace("w2", "Home"), workspace("w3", "Home"))
	svc := h.service(t, allocator.Config{Workers: 3})

	result, err := svc.Allocate(context.Background(), allocator.Request{ResourceIDs: []string{"w1", "w2", "w3"}})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Allocated != 3 || result.Failed != 0 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	want := map[string]bool{"home.html": true, "[LN 1] home.html": true, "[LN 2] home.html": true}
	conflicts := 0
	for _, alloc := range result.Allocations {
		if !want[alloc.Entry.LocalPath] {
			t.Fatalf("unexpected or duplicate path %q", alloc.Entry.LocalPath)
		}
		delete(want, alloc.Entry.LocalPath)
		if alloc.Conflict {
			conflicts++
		}

		stored, err := h.repo.GetRenderEntry(context.Background(), alloc.ResourceID, pubresources.RenderHTML)
		if err != nil || stored == nil {
			t.Fatalf("expected stored entry for %s, got %v %v", alloc.ResourceID, stored, err)
		}
		if stored.Expected || stored.LocalPath != alloc.Entry.LocalPath {
			t.Fatalf("stored entry mismatch: %+v", stored)
		}
		abs, _ := h.layout.Abs(alloc.Entry.LocalPath)
		if _, err := os.Stat(abs); err != nil {
			t.Fatalf("expected placeholder for %s: %v", alloc.Entry.LocalPath, err)
		}
	}
	if conflicts != 2 {
		t.Fatalf("expected 2 conflicts, got %d", conflicts)
	}
}

func TestAllocateReusesExistingEntries(t *testing.T) {
	page := &pubresources.Resource{ID: "p1", Type: pubresources.TypePage, Title: "Guide", Page: &pubresources.PageProperties{}}
	h := newHarness(t, page)
	existing := pubresources.RenderEntry{LocalPath: "pages/p1/old_guide.html", Slug: "pages/p1/old_guide.html"}
	if err := h.repo.SaveRenderEntry(context.Background(), "p1", pubresources.RenderHTML, existing); err != nil {
		t.Fatalf("save: %v", err)
	}
	svc := h.service(t, allocator.Config{})

	result, err := svc.Allocate(context.Background(), allocator.Request{ResourceIDs: []string{"p1"}})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Reused != 1 || !result.Allocations[0].Reused {
		t.Fatalf("expected reuse, got %+v", result)
	}
	if result.Allocations[0].Entry.LocalPath != existing.LocalPath {
		t.Fatalf("unexpected entry %+v", result.Allocations[0].Entry)
	}

	result, err = svc.Allocate(context.Background(), allocator.Request{ResourceIDs: []string{"p1"}, Reallocate: true})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got := result.Allocations[0].Entry.LocalPath; got != "pages/p1/guide.html" {
		t.Fatalf("expected fresh allocation, got %q", got)
	}
}

func page(id, title string) *pubresources.Resource {
	return &pubresources.Resource{ID: id, Type: pubresources.TypePage, Title: title, Page: &pubresources.PageProperties{}}
}

func (h *harness) offlineLinks(t *testing.T) links.Resolver {
	t.Helper()
	r, err := links.NewResolver(h.repo, h.layout, links.Config{Mode: pubresources.ModeOffline})
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	return r
}

func TestAllocateKeepsPredictedPathInsideIDSubfolder(t *testing.T) {
	p1, p2 := page("p1", "Getting Started"), page("p2", "Overview")
	h := newHarness(t, p1, p2)
	resolver := h.offlineLinks(t)
	ctx := context.Background()

	abs, err := h.layout.Abs("pages/p1/getting_started.html")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte("<p>previous pass</p>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	before, err := resolver.Resolve(ctx, p2, "p1", "")
	if err != nil {
		t.Fatalf("resolve before allocation: %v", err)
	}

	svc := h.service(t, allocator.Config{})
	for _, reallocate := range []bool{false, true} {
		result, err := svc.Allocate(ctx, allocator.Request{ResourceIDs: []string{"p1"}, Reallocate: reallocate})
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		alloc := result.Allocations[0]
		if alloc.Entry.LocalPath != "pages/p1/getting_started.html" || alloc.Conflict {
			t.Fatalf("expected the owned path, got %+v", alloc)
		}
	}
	content, err := os.ReadFile(abs)
	if err != nil || string(content) != "<p>previous pass</p>" {
		t.Fatalf("expected existing render to be kept, got %q %v", content, err)
	}

	after, err := resolver.Resolve(ctx, p2, "p1", "")
	if err != nil {
		t.Fatalf("resolve after allocation: %v", err)
	}
	if before.URL != "../p1/getting_started.html" || after.URL != before.URL {
		t.Fatalf("expected stable link, got %q before and %q after", before.URL, after.URL)
	}
}

func TestAllocatePlacesCMSPagesAtTheirSlug(t *testing.T) {
	c1 := page("c1", "Setup")
	c1.Page.CMS = &pubresources.CMSProperties{CustomSlug: "/docs/config/setup", Root: "docs", Category1: "config"}
	p2 := page("p2", "Overview")
	h := newHarness(t, c1, p2)
	ctx := context.Background()

	result, err := h.service(t, allocator.Config{}).Allocate(ctx, allocator.Request{ResourceIDs: []string{"c1"}})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	local := result.Allocations[0].Entry.LocalPath
	if local != "docs/config/setup.html" {
		t.Fatalf("expected slug addressed file, got %q", local)
	}
	abs, _ := h.layout.Abs(local)
	if _, err := os.Stat(abs); err != nil {
		t.Fatalf("expected placeholder at %s: %v", local, err)
	}

	link, err := h.offlineLinks(t).Resolve(ctx, p2, "c1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := path.Join("pages/p2", link.URL); got != local {
		t.Fatalf("offline link %q points at %q, allocated %q", link.URL, got, local)
	}
}

func TestAllocateReportsPerResourceFailures(t *testing.T) {
	h := newHarness(t, workspace("w1", "Home"))
	svc := h.service(t, allocator.Config{Workers: 2})

	result, err := svc.Allocate(context.Background(), allocator.Request{ResourceIDs: []string{"missing", "w1"}})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Failed != 1 || result.Allocated != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if !pubresources.IsNotFound(result.Allocations[0].Err) {
		t.Fatalf("expected not found for first allocation, got %v", result.Allocations[0].Err)
	}
	if result.Allocations[1].Entry.LocalPath != "home.html" {
		t.Fatalf("unexpected path %q", result.Allocations[1].Entry.LocalPath)
	}
}

func TestAllocateDryRunDoesNotPersist(t *testing.T) {
	h := newHarness(t, workspace("w1", "Home"))
	svc := h.service(t, allocator.Config{DryRun: true})

	result, err := svc.Allocate(context.Background(), allocator.Request{ResourceIDs: []string{"w1"}, Kind: pubresources.RenderText})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if !result.DryRun || result.Allocations[0].Entry.LocalPath != "home.txt" {
		t.Fatalf("unexpected dry run result %+v", result)
	}
	stored, err := h.repo.GetRenderEntry(context.Background(), "w1", pubresources.RenderText)
	if err != nil || stored != nil {
		t.Fatalf("expected nothing stored, got %v %v", stored, err)
	}
}

func TestAllocateHonoursCancellation(t *testing.T) {
	h := newHarness(t, workspace("w1", "Home"), workspace("w2", "About"))
	svc := h.service(t, allocator.Config{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Allocate(ctx, allocator.Request{ResourceIDs: []string{"w1", "w2"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Failed != 2 {
		t.Fatalf("expected every allocation to fail, got %+v", result)
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := allocator.NewService(allocator.Config{}, allocator.Dependencies{}); !errors.Is(err, allocator.ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired, got %v", err)
	}
	deps := allocator.Dependencies{Repository: resources.NewMemoryRepository()}
	if _, err := allocator.NewService(allocator.Config{}, deps); !errors.Is(err, allocator.ErrPathsRequired) {
		t.Fatalf("expected ErrPathsRequired, got %v", err)
	}
}
