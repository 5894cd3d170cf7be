package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/logging/gologger"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

// Options captures CLI level overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	RootDir    string
	Mode       string
	BaseURL    string
	Manifest   string
	LogLevel   string
	Workers    int
}

// Resources bundles the module and its logger for command handlers.
type Resources struct {
	Module *publish.Module
	Logger interfaces.Logger
}

// ManifestEntry is one resource of a JSON manifest.
type ManifestEntry struct {
	Parent   string              `json:"parent,omitempty"`
	Objects  []string            `json:"objects,omitempty"`
	Resource *resources.Resource `json:"resource"`
}

// Manifest lists the resources a command operates on.
type Manifest struct {
	Resources []ManifestEntry `json:"resources"`
}

// BuildModule loads configuration, constructs the module and seeds it with
// the manifest resources.
func BuildModule(opts Options) (*Resources, error) {
	cfg := publish.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := publish.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if root := strings.TrimSpace(opts.RootDir); root != "" {
		cfg.RootDir = root
	}
	if mode := strings.TrimSpace(opts.Mode); mode != "" {
		cfg.Mode = resources.Mode(strings.ToLower(mode))
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = base
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if opts.Workers > 0 {
		cfg.Allocator.Workers = opts.Workers
	}
	cfg.Features.Logger = true

	provider, err := gologger.NewProvider(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}

	module, err := publish.New(cfg, publish.WithLoggerProvider(provider))
	if err != nil {
		return nil, err
	}

	if path := strings.TrimSpace(opts.Manifest); path != "" {
		manifest, err := LoadManifest(path)
		if err != nil {
			_ = module.Close()
			return nil, err
		}
		if err := Seed(context.Background(), module, manifest); err != nil {
			_ = module.Close()
			return nil, err
		}
	}

	return &Resources{
		Module: module,
		Logger: logging.ModuleLogger(provider, "publish.cli"),
	}, nil
}

// LoadManifest reads a JSON resource manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &manifest, nil
}

// Seed stores every manifest entry in the module repository.
func Seed(ctx context.Context, module *publish.Module, manifest *Manifest) error {
	if manifest == nil {
		return nil
	}
	for _, entry := range manifest.Resources {
		if entry.Resource == nil {
			continue
		}
		if err := module.PutResource(ctx, entry.Resource, entry.Parent); err != nil {
			return fmt.Errorf("seed %s: %w", entry.Resource.ID, err)
		}
		for _, object := range entry.Objects {
			if err := module.RegisterContentObject(ctx, object, entry.Resource.ID); err != nil {
				return fmt.Errorf("seed object %s: %w", object, err)
			}
		}
	}
	return nil
}

// ResourceIDs returns the ids listed in the manifest in order.
func (m *Manifest) ResourceIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.Resources))
	for _, entry := range m.Resources {
		if entry.Resource != nil {
			ids = append(ids, entry.Resource.ID)
		}
	}
	return ids
}

// SplitList splits comma separated flag values.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
