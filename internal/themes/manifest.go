package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFiles lists the manifest names probed in a theme folder, in order.
var ManifestFiles = []string{"theme.json", "theme.yaml", "theme.yml"}

// ManifestToken declares a token with per-mode values.
type ManifestToken struct {
	Local  string `json:"local" yaml:"local"`
	Remote string `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Value returns the mode specific value, falling back to Local.
func (t ManifestToken) Value(online bool) string {
	if online && strings.TrimSpace(t.Remote) != "" {
		return t.Remote
	}
	return t.Local
}

// Manifest mirrors the theme.json / theme.yaml structure.
type Manifest struct {
	ID        string                   `json:"id" yaml:"id"`
	Base      string                   `json:"base,omitempty" yaml:"base,omitempty"`
	OnlineURL string                   `json:"online_url,omitempty" yaml:"online_url,omitempty"`
	Tokens    map[string]ManifestToken `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// LoadManifest reads the manifest of the theme folder dir. A folder without a
// manifest yields an empty manifest and false; a folder with several is
// rejected with ErrManifestAmbiguous.
func LoadManifest(dir string) (*Manifest, bool, error) {
	var found []string
	for _, name := range ManifestFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, false, fmt.Errorf("themes: stat manifest: %w", err)
		}
		found = append(found, path)
	}
	switch len(found) {
	case 0:
		return &Manifest{}, false, nil
	case 1:
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrManifestAmbiguous, strings.Join(found, ", "))
	}

	path := found[0]
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	manifest, err := ParseManifest(file, filepath.Ext(path))
	if err != nil {
		return nil, false, fmt.Errorf("themes: %s: %w", path, err)
	}
	return manifest, true, nil
}

// ParseManifest decodes and validates a manifest. ext selects the format:
// ".json", or ".yaml"/".yml". Both formats are checked against the same
// schema and decoded through their JSON form.
func ParseManifest(r io.Reader, ext string) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var doc any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		doc = nil
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
	}

	if err := validateManifest(doc); err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	manifest.ID = strings.TrimSpace(manifest.ID)
	manifest.Base = strings.TrimSpace(manifest.Base)
	manifest.OnlineURL = strings.TrimSpace(manifest.OnlineURL)
	return &manifest, nil
}
