package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-publish/pkg/interfaces"
)

const (
	rootModule        = "publish"
	pathsModule       = "publish.paths"
	linksModule       = "publish.links"
	themesModule      = "publish.themes"
	breadcrumbsModule = "publish.breadcrumbs"
	allocatorModule   = "publish.allocator"
	resourcesModule   = "publish.resources"
)

const (
	fieldResourceID = "resource_id"
	fieldRenderKind = "render_kind"
	fieldThemeID    = "theme_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PathsLogger returns the logger namespace reserved for path resolution.
func PathsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pathsModule)
}

// LinksLogger returns the logger namespace reserved for link resolution.
func LinksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linksModule)
}

// ThemesLogger returns the logger namespace reserved for theme loading.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// BreadcrumbsLogger returns the logger namespace reserved for breadcrumb trails.
func BreadcrumbsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, breadcrumbsModule)
}

// AllocatorLogger returns the logger namespace reserved for render allocation.
func AllocatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, allocatorModule)
}

// ResourcesLogger returns the logger namespace reserved for repositories.
func ResourcesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resourcesModule)
}

// WithResourceContext enriches the logger with the resource being processed.
// Empty values are ignored.
func WithResourceContext(logger interfaces.Logger, resourceID, kind string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(resourceID); trimmed != "" {
		fields[fieldResourceID] = trimmed
	}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldRenderKind] = trimmed
	}
	return WithFields(logger, fields)
}

// WithThemeContext tags entries with the theme identifier.
func WithThemeContext(logger interfaces.Logger, themeID string) interfaces.Logger {
	if trimmed := strings.TrimSpace(themeID); trimmed != "" {
		return WithFields(logger, map[string]any{fieldThemeID: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
