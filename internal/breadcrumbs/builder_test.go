package breadcrumbs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-publish/internal/breadcrumbs"
	"github.com/goliatone/go-publish/internal/links"
	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/internal/resources"
	pubresources "github.com/goliatone/go-publish/resources"
)

type node struct {
	res    *pubresources.Resource
	parent string
}

func newBuilder(t *testing.T, nodes ...node) (*breadcrumbs.Builder, *resources.MemoryRepository) {
	t.Helper()
	ctx := context.Background()
	repo := resources.NewMemoryRepository()
	for _, n := range nodes {
		if err := repo.PutResource(ctx, n.res, n.parent); err != nil {
			t.Fatalf("put %s: %v", n.res.ID, err)
		}
	}
	layout, err := paths.NewResolver(t.TempDir(), paths.DefaultProfile())
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	resolver, err := links.NewResolver(repo, layout, links.Config{Mode: pubresources.ModeOffline})
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	builder, err := breadcrumbs.NewBuilder(repo, resolver)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return builder, repo
}

func cmsPage(id, slug string, cms pubresources.CMSProperties) *pubresources.Resource {
	cms.CustomSlug = slug
	return &pubresources.Resource{ID: id, Type: pubresources.TypePage, Title: "Setup", Page: &pubresources.PageProperties{
		Thumbnail: &pubresources.Thumbnail{Kind: pubresources.ThumbnailEmoji, Value: "⚙️"},
		CMS:       &cms,
	}}
}

func TestBuildCMSTrail(t *testing.T) {
	ws := &pubresources.Resource{ID: "ws", Type: pubresources.TypeWorkspace, Title: "Workspace"}
	c1 := cmsPage("c1", "docs/config/setup", pubresources.CMSProperties{Root: "docs", Category1: "config"})
	db1 := &pubresources.Resource{ID: "db1", Type: pubresources.TypeDatabase, Title: "Table"}
	p1 := &pubresources.Resource{ID: "p1", Type: pubresources.TypePage, Title: "Leaf", Page: &pubresources.PageProperties{
		Thumbnail: &pubresources.Thumbnail{Kind: pubresources.ThumbnailImage, Value: "img/leaf.png"},
	}}
	builder, _ := newBuilder(t,
		node{res: ws},
		node{res: c1, parent: "ws"},
		node{res: db1, parent: "c1"},
		node{res: p1, parent: "db1"},
	)

	crumb, err := builder.Build(context.Background(), p1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []breadcrumbs.Item{
		{Type: breadcrumbs.ItemCategory, Traits: breadcrumbs.TraitRoot, Text: "docs", URL: "docs"},
		{Type: breadcrumbs.ItemCategory, Traits: breadcrumbs.TraitCategory, Text: "config", URL: "docs/config"},
		{Type: breadcrumbs.ItemPage, Traits: breadcrumbs.TraitEmojiIcon, Text: "Setup", Data: "⚙️", URL: "../../docs/config/setup.html"},
		{Type: breadcrumbs.ItemDatabase, Text: "Table", URL: "../../databases/db1/table.html"},
		{Type: breadcrumbs.ItemPage, Traits: breadcrumbs.TraitCurrent | breadcrumbs.TraitImageIcon, Text: "Leaf", Data: "img/leaf.png", URL: ""},
	}
	if len(crumb.Trail) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(crumb.Trail), crumb.Trail)
	}
	for i := range want {
		if crumb.Trail[i] != want[i] {
			t.Fatalf("item %d: expected %+v, got %+v", i, want[i], crumb.Trail[i])
		}
	}
	if !crumb.Trail[4].Traits.Has(breadcrumbs.TraitCurrent) || crumb.Trail[0].Traits.Has(breadcrumbs.TraitCategory) {
		t.Fatal("unexpected trait flags")
	}
}

func TestBuildFallsBackToPlaceholderURL(t *testing.T) {
	ws := &pubresources.Resource{ID: "ws", Type: pubresources.TypeWorkspace, Title: "Workspace"}
	p3 := &pubresources.Resource{ID: "p3", Type: pubresources.TypePage, Title: "Notes", Page: &pubresources.PageProperties{}}
	builder, _ := newBuilder(t, node{res: ws}, node{res: p3, parent: "ws"})

	crumb, err := builder.Build(context.Background(), p3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(crumb.Trail) != 2 {
		t.Fatalf("expected two items, got %+v", crumb.Trail)
	}
	root := crumb.Trail[0]
	if root.URL != breadcrumbs.PlaceholderURL || root.Type != breadcrumbs.ItemWorkspace {
		t.Fatalf("expected placeholder workspace item, got %+v", root)
	}
	if root.Traits != 0 {
		t.Fatalf("expected no icon traits without thumbnail, got %b", root.Traits)
	}
	if !crumb.Trail[1].Traits.Has(breadcrumbs.TraitCurrent) {
		t.Fatalf("expected last item to be current, got %+v", crumb.Trail[1])
	}
}

func TestBuildWithoutAncestorsIsEmpty(t *testing.T) {
	ws := &pubresources.Resource{ID: "ws", Type: pubresources.TypeWorkspace, Title: "Workspace"}
	builder, _ := newBuilder(t, node{res: ws})

	crumb, err := builder.Build(context.Background(), ws)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !crumb.Empty() {
		t.Fatalf("expected empty breadcrumb, got %+v", crumb.Trail)
	}
}

func TestBuildStopsAtSourceWhenItIsCMSPage(t *testing.T) {
	ws := &pubresources.Resource{ID: "ws", Type: pubresources.TypeWorkspace, Title: "Workspace"}
	c1 := cmsPage("c1", "/guides/setup/", pubresources.CMSProperties{})
	builder, _ := newBuilder(t, node{res: ws}, node{res: c1, parent: "ws"})

	crumb, err := builder.Build(context.Background(), c1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(crumb.Trail) != 2 {
		t.Fatalf("expected root and current items, got %+v", crumb.Trail)
	}
	root := crumb.Trail[0]
	if root.Text != "guides" || root.URL != "guides" || !root.Traits.Has(breadcrumbs.TraitRoot) {
		t.Fatalf("expected segment fallback label, got %+v", root)
	}
	if !crumb.Trail[1].Traits.Has(breadcrumbs.TraitCurrent) || crumb.Trail[1].URL != "" {
		t.Fatalf("expected current cms page, got %+v", crumb.Trail[1])
	}
}

func TestBuildRejectsSlugsDeeperThanCategories(t *testing.T) {
	ws := &pubresources.Resource{ID: "ws", Type: pubresources.TypeWorkspace, Title: "Workspace"}
	ok := cmsPage("ok", "a/b/c/d/e/f/page", pubresources.CMSProperties{})
	deep := cmsPage("deep", "a/b/c/d/e/f/g/page", pubresources.CMSProperties{})
	builder, _ := newBuilder(t, node{res: ws}, node{res: ok, parent: "ws"}, node{res: deep, parent: "ws"})

	crumb, err := builder.Build(context.Background(), ok)
	if err != nil {
		t.Fatalf("Build at max depth: %v", err)
	}
	if len(crumb.Trail) != 7 {
		t.Fatalf("expected six category items plus the page, got %d", len(crumb.Trail))
	}

	if _, err := builder.Build(context.Background(), deep); !errors.Is(err, breadcrumbs.ErrCategoryDepthExceeded) {
		t.Fatalf("expected ErrCategoryDepthExceeded, got %v", err)
	}
}

func TestNewBuilderRequiresCollaborators(t *testing.T) {
	if _, err := breadcrumbs.NewBuilder(nil, nil); !errors.Is(err, breadcrumbs.ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired, got %v", err)
	}
	if _, err := breadcrumbs.NewBuilder(resources.NewMemoryRepository(), nil); !errors.Is(err, breadcrumbs.ErrLinksRequired) {
		t.Fatalf("expected ErrLinksRequired, got %v", err)
	}
}
