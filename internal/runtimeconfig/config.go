package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-publish/internal/logging/gologger"
	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/resources"
)

var (
	ErrRootDirRequired            = errors.New("publish config: root directory is required")
	ErrModeInvalid                = errors.New("publish config: mode must be offline or online")
	ErrBaseURLInvalid             = errors.New("publish config: base url must be absolute")
	ErrProfileInvalid             = errors.New("publish config: path profile is invalid")
	ErrThemesFeatureRequired      = errors.New("publish config: themes feature must be enabled to configure default themes")
	ErrStorageDriverUnknown       = errors.New("publish config: storage driver is invalid")
	ErrStorageDialectUnknown      = errors.New("publish config: storage dialect is invalid")
	ErrStorageDSNRequired         = errors.New("publish config: storage dsn is required for the bun driver")
	ErrCacheRequiresBunStorage    = errors.New("publish config: cache requires the bun storage driver")
	ErrCacheTTLInvalid            = errors.New("publish config: cache ttl must be zero or positive")
	ErrRoutesGroupRequired        = errors.New("publish config: routes group is required when a route config is set")
	ErrAllocatorWorkersInvalid    = errors.New("publish config: allocator workers must be zero or positive")
	ErrMaxConflictAttemptsInvalid = errors.New("publish config: max conflict attempts must be zero or positive")
	ErrLoggingLevelInvalid        = errors.New("publish config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("publish config: logging format is invalid")
	ErrConfigPathRequired         = errors.New("publish config: config file path is required")
)

const (
	StorageMemory = "memory"
	StorageBun    = "bun"

	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config aggregates the settings of a publication module.
type Config struct {
	Mode      resources.Mode  `yaml:"mode"`
	BaseURL   string          `yaml:"base_url"`
	RootDir   string          `yaml:"root_dir"`
	Profile   paths.Profile   `yaml:"profile"`
	Themes    ThemeConfig     `yaml:"themes"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Routes    RoutesConfig    `yaml:"routes"`
	Allocator AllocatorConfig `yaml:"allocator"`
	Logging   gologger.Config `yaml:"logging"`
	Features  Features        `yaml:"features"`
}

// ThemeConfig captures where themes live and which ones apply by default.
type ThemeConfig struct {
	Dir      string   `yaml:"dir"`
	Defaults []string `yaml:"defaults"`
	// Watch drops cached theme chains when files under Dir change.
	Watch bool `yaml:"watch"`
}

// StorageConfig selects the resource repository backend.
type StorageConfig struct {
	Driver  string `yaml:"driver"`
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
}

// CacheConfig captures read cache behaviour for bun repositories.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// RoutesConfig wires go-urlkit routes for online links. When URLKit is nil
// online URLs are joined onto BaseURL.
type RoutesConfig struct {
	URLKit    *urlkit.Config `yaml:"urlkit"`
	Group     string         `yaml:"group"`
	Route     string         `yaml:"route"`
	SlugParam string         `yaml:"slug_param"`
}

// AllocatorConfig captures render planning behaviour.
type AllocatorConfig struct {
	Workers             int  `yaml:"workers"`
	MaxConflictAttempts int  `yaml:"max_conflict_attempts"`
	Placeholders        bool `yaml:"placeholders"`
}

// Features toggles module functionality.
type Features struct {
	Themes      bool `yaml:"themes"`
	Breadcrumbs bool `yaml:"breadcrumbs"`
	Allocator   bool `yaml:"allocator"`
	Logger      bool `yaml:"logger"`
}

// DefaultConfig returns offline, in-memory defaults with every feature on.
func DefaultConfig() Config {
	return Config{
		Mode:    resources.ModeOffline,
		Profile: paths.DefaultProfile(),
		Themes: ThemeConfig{
			Dir: "themes",
		},
		Storage: StorageConfig{
			Driver:  StorageMemory,
			Dialect: DialectSQLite,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Routes: RoutesConfig{
			Route:     "page",
			SlugParam: "slug",
		},
		Allocator: AllocatorConfig{
			MaxConflictAttempts: paths.DefaultMaxConflictAttempts,
			Placeholders:        true,
		},
		Logging: gologger.Config{
			Level:  "info",
			Format: "console",
		},
		Features: Features{
			Themes:      true,
			Breadcrumbs: true,
			Allocator:   true,
		},
	}
}

// LoadFile reads a YAML config file on top of DefaultConfig. The result is not
// validated.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, ErrConfigPathRequired
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("publish config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("publish config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.RootDir) == "" {
		return ErrRootDirRequired
	}
	if !cfg.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrModeInvalid, cfg.Mode)
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %q", ErrBaseURLInvalid, base)
		}
	}
	if len(cfg.Profile) > 0 {
		if err := cfg.Profile.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrProfileInvalid, err)
		}
	}
	if !cfg.Features.Themes && len(cfg.Themes.Defaults) > 0 {
		return ErrThemesFeatureRequired
	}

	driver := normalize(cfg.Storage.Driver)
	switch driver {
	case "", StorageMemory:
	case StorageBun:
		if dialect := normalize(cfg.Storage.Dialect); !isSupportedDialect(dialect) {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	if cfg.Cache.Enabled && driver != StorageBun {
		return ErrCacheRequiresBunStorage
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}

	if cfg.Routes.URLKit != nil && strings.TrimSpace(cfg.Routes.Group) == "" {
		return ErrRoutesGroupRequired
	}
	if cfg.Allocator.Workers < 0 {
		return ErrAllocatorWorkersInvalid
	}
	if cfg.Allocator.MaxConflictAttempts < 0 {
		return ErrMaxConflictAttemptsInvalid
	}

	if cfg.Features.Logger {
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// EffectiveProfile returns the configured profile or the stock layout.
func (cfg Config) EffectiveProfile() paths.Profile {
	if len(cfg.Profile) == 0 {
		return paths.DefaultProfile()
	}
	return cfg.Profile
}

// StorageDriver returns the normalized storage driver name.
func (cfg Config) StorageDriver() string {
	if driver := normalize(cfg.Storage.Driver); driver != "" {
		return driver
	}
	return StorageMemory
}

// StorageDialect returns the normalized bun dialect name.
func (cfg Config) StorageDialect() string {
	if dialect := normalize(cfg.Storage.Dialect); dialect != "" {
		return dialect
	}
	return DialectSQLite
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDialect(dialect string) bool {
	switch dialect {
	case "", DialectSQLite, DialectPostgres:
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
