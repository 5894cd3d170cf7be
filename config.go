package publish

import "github.com/goliatone/go-publish/internal/runtimeconfig"

var (
	ErrRootDirRequired            = runtimeconfig.ErrRootDirRequired
	ErrModeInvalid                = runtimeconfig.ErrModeInvalid
	ErrBaseURLInvalid             = runtimeconfig.ErrBaseURLInvalid
	ErrProfileInvalid             = runtimeconfig.ErrProfileInvalid
	ErrThemesFeatureRequired      = runtimeconfig.ErrThemesFeatureRequired
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDialectUnknown      = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheRequiresBunStorage    = runtimeconfig.ErrCacheRequiresBunStorage
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrRoutesGroupRequired        = runtimeconfig.ErrRoutesGroupRequired
	ErrAllocatorWorkersInvalid    = runtimeconfig.ErrAllocatorWorkersInvalid
	ErrMaxConflictAttemptsInvalid = runtimeconfig.ErrMaxConflictAttemptsInvalid
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	ThemeConfig     = runtimeconfig.ThemeConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	RoutesConfig    = runtimeconfig.RoutesConfig
	AllocatorConfig = runtimeconfig.AllocatorConfig
	Features        = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
