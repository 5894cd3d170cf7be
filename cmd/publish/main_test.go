package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-publish/cmd/publish/internal/bootstrap"
	"github.com/goliatone/go-publish/pkg/testsupport"
)

const manifestJSON = `{
  "resources": [
    {"resource": {"id": "ws", "type": "workspace", "title": "Home"}},
    {"parent": "ws", "objects": ["block-1"], "resource": {"id": "p1", "type": "page", "title": "Getting Started", "page": {}}},
    {"parent": "ws", "resource": {"id": "p2", "type": "page", "title": "Overview", "page": {}}}
  ]
}`

func writeSite(t *testing.T) (root, manifest string) {
	t.Helper()
	root = t.TempDir()
	err := testsupport.WriteTree(root, map[string]string{
		"manifest.json":          manifestJSON,
		"themes/base/theme.json": `{"tokens":{"color":{"local":"blue"}}}`,
	})
	if err != nil {
		t.Fatalf("write tree: %v", err)
	}
	return root, filepath.Join(root, "manifest.json")
}

func TestRunAllocateReportsPaths(t *testing.T) {
	root, manifest := writeSite(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"allocate", "-root", root, "-manifest", manifest, "-log-level", "error"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var lines []allocationLine
	if err := json.Unmarshal(out.Bytes(), &lines); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	want := map[string]string{"ws": "home.html", "p1": "pages/p1/getting_started.html", "p2": "pages/p2/overview.html"}
	if len(lines) != len(want) {
		t.Fatalf("unexpected report %+v", lines)
	}
	for _, line := range lines {
		if want[line.ResourceID] != line.Path {
			t.Fatalf("unexpected path for %s: %q", line.ResourceID, line.Path)
		}
	}
}

func TestRunResolveAndTokens(t *testing.T) {
	root, manifest := writeSite(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"resolve", "-root", root, "-manifest", manifest, "-from", "p2", "-to", "block-1", "-log-level", "error"}, &out)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out.String(), `"../p1/getting_started.html#block-1"`) {
		t.Fatalf("unexpected resolve output %s", out.String())
	}

	out.Reset()
	err = run(context.Background(), []string{"tokens", "-root", root, "-folder", "pages/p1", "-themes", "base", "-log-level", "error"}, &out)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if !strings.Contains(out.String(), `"color": "blue"`) {
		t.Fatalf("unexpected tokens output %s", out.String())
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	root, _ := writeSite(t)
	if err := run(context.Background(), nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"publish", "-root", root}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunPropagatesBootstrapErrors(t *testing.T) {
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	boom := errors.New("boom")
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Resources, error) {
		return nil, boom
	}
	if err := run(context.Background(), []string{"allocate"}, &bytes.Buffer{}); !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}
