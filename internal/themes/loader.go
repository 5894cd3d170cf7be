package themes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
	pubthemes "github.com/goliatone/go-publish/themes"
)

// DefaultThemesDir is the root-relative folder holding one folder per theme.
const DefaultThemesDir = "themes"

// LoaderConfig configures where themes live and which mode tokens target.
type LoaderConfig struct {
	Root      string
	ThemesDir string
	Mode      resources.Mode
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader reads theme folders and resolves their base chains.
type Loader struct {
	root      string
	themesDir string
	online    bool
	logger    interfaces.Logger
}

// NewLoader constructs a loader rooted at cfg.Root.
func NewLoader(cfg LoaderConfig, opts ...LoaderOption) (*Loader, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, ErrThemesDirRequired
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	dir := path.Clean(filepath.ToSlash(strings.TrimSpace(cfg.ThemesDir)))
	if dir == "." || dir == "" {
		dir = DefaultThemesDir
	}
	if strings.HasPrefix(dir, "../") || dir == ".." || path.IsAbs(dir) {
		return nil, fmt.Errorf("%w: %q must stay under the publication root", ErrThemesDirRequired, cfg.ThemesDir)
	}
	l := &Loader{
		root:      abs,
		themesDir: dir,
		online:    cfg.Mode == resources.ModeOnline,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// Mode returns the mode tokens are produced for.
func (l *Loader) Mode() resources.Mode {
	if l.online {
		return resources.ModeOnline
	}
	return resources.ModeOffline
}

// ThemesPath returns the absolute folder holding the themes.
func (l *Loader) ThemesPath() string {
	return filepath.Join(l.root, filepath.FromSlash(l.themesDir))
}

// LoadChain loads id and every base it inherits from. A base chain that
// revisits a theme fails with *CyclicDependencyError.
func (l *Loader) LoadChain(id string) (*Info, error) {
	return l.loadChain(id, map[string]bool{}, nil)
}

func (l *Loader) loadChain(id string, visited map[string]bool, trail []string) (*Info, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrThemeIDRequired
	}
	trail = append(trail, id)
	if visited[id] {
		err := &CyclicDependencyError{Chain: append([]string(nil), trail...)}
		l.logger.Error("themes.chain.cyclic", "chain", strings.Join(trail, " -> "))
		return nil, err
	}
	visited[id] = true

	info, err := l.loadTheme(id)
	if err != nil {
		return nil, err
	}
	if info.Base != "" {
		parent, err := l.loadChain(info.Base, visited, trail)
		if err != nil {
			return nil, err
		}
		info.Parent = parent
	}
	return info, nil
}

func (l *Loader) loadTheme(id string) (*Info, error) {
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, id)
	}
	dir := path.Join(l.themesDir, id)
	absDir := filepath.Join(l.root, filepath.FromSlash(dir))

	stat, err := os.Stat(absDir)
	if err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, id)
	}

	manifest, _, err := LoadManifest(absDir)
	if err != nil {
		return nil, err
	}
	if manifest.ID != "" && manifest.ID != id {
		return nil, fmt.Errorf("%w: folder %q declares %q", ErrManifestMismatch, id, manifest.ID)
	}

	info := &Info{
		ID:        id,
		Base:      manifest.Base,
		OnlineURL: manifest.OnlineURL,
		Dir:       dir,
		Tokens:    make(map[string]Token, len(manifest.Tokens)),
	}
	for key, tok := range manifest.Tokens {
		info.Tokens[key] = Token{Kind: pubthemes.TokenValue, Value: tok.Value(l.online)}
	}

	files, err := listFiles(absDir)
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		l.addFileTokens(info, absDir, rel)
	}

	logging.WithThemeContext(l.logger, id).Debug("themes.loaded", "base", info.Base, "files", len(files), "tokens", len(info.Tokens))
	return info, nil
}

// addFileTokens registers the reference and include tokens for rel. Tokens
// declared in the manifest take precedence over derived ones.
func (l *Loader) addFileTokens(info *Info, absDir, rel string) {
	refKey := pubthemes.ReferenceKey(rel)
	if _, ok := info.Tokens[refKey]; !ok {
		info.Tokens[refKey] = Token{Kind: pubthemes.TokenReference, Value: l.referenceValue(info, rel)}
	}
	incKey := pubthemes.IncludeKey(rel)
	if _, ok := info.Tokens[incKey]; !ok {
		file := filepath.Join(absDir, filepath.FromSlash(rel))
		info.Tokens[incKey] = Token{Kind: pubthemes.TokenInclude, Load: readFile(file)}
	}
	if isMarkdown(rel) {
		mdKey := pubthemes.MarkdownKey(rel)
		if _, ok := info.Tokens[mdKey]; !ok {
			file := filepath.Join(absDir, filepath.FromSlash(rel))
			info.Tokens[mdKey] = Token{Kind: pubthemes.TokenMarkdown, Load: renderMarkdown(file)}
		}
	}
}

func (l *Loader) referenceValue(info *Info, rel string) string {
	if !l.online {
		return path.Join(info.Dir, rel)
	}
	if info.OnlineURL != "" {
		return strings.TrimRight(info.OnlineURL, "/") + "/" + rel
	}
	return "/" + path.Join(info.Dir, rel)
}

// readFile returns a thunk that reads the file each time it is called.
func readFile(file string) func() (string, error) {
	return func() (string, error) {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("themes: read include: %w", err)
		}
		return string(data), nil
	}
}

func listFiles(absDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(absDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(absDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("themes: list files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
