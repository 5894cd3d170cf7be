package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-publish"
	"github.com/goliatone/go-publish/cmd/publish/internal/bootstrap"
	"github.com/goliatone/go-publish/resources"
)

var moduleBuilder = bootstrap.BuildModule

var errUsage = errors.New("usage: publish <allocate|resolve|breadcrumb|tokens|watch> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("publish: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	fs := flag.NewFlagSet("publish "+command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := bootstrap.Options{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.RootDir, "root", "", "Repository root (overrides the config file)")
	fs.StringVar(&opts.Mode, "mode", "", "Link mode: offline or online")
	fs.StringVar(&opts.BaseURL, "base-url", "", "Base URL used in online mode")
	fs.StringVar(&opts.Manifest, "manifest", "", "JSON manifest of resources to load")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level override")
	kind := fs.String("kind", string(resources.DefaultRenderKind), "Render kind")
	from := fs.String("from", "", "Source resource id")
	to := fs.String("to", "", "Target resource or content object id")
	folder := fs.String("folder", "", "Output folder for theme token resolution")
	themes := fs.String("themes", "", "Comma separated theme ids (defaults to config)")
	fs.IntVar(&opts.Workers, "workers", 0, "Allocator worker count")
	reallocate := fs.Bool("reallocate", false, "Ignore existing render entries when allocating")

	if err := fs.Parse(rest); err != nil {
		return err
	}

	res, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	module := res.Module
	defer module.Close()

	renderKind := resources.RenderKind(*kind)

	switch command {
	case "allocate":
		ids := fs.Args()
		if len(ids) == 0 && opts.Manifest != "" {
			manifest, err := bootstrap.LoadManifest(opts.Manifest)
			if err != nil {
				return err
			}
			ids = manifest.ResourceIDs()
		}
		handler, err := module.AllocateCommands()
		if err != nil {
			return err
		}
		var result *publish.AllocationResult
		err = handler.Execute(ctx, publish.AllocateCommand{
			ResourceIDs:    ids,
			Kind:           renderKind,
			Reallocate:     *reallocate,
			ResultCallback: func(r *publish.AllocationResult) { result = r },
		})
		if result != nil {
			if werr := writeJSON(out, allocationReport(result)); werr != nil {
				return werr
			}
		}
		return err

	case "resolve":
		source, err := module.Repository().GetResource(ctx, *from)
		if err != nil {
			return fmt.Errorf("load source: %w", err)
		}
		link, err := module.ResolveLink(ctx, source, *to, renderKind)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]string{"url": link.URL})

	case "breadcrumb":
		source, err := module.Repository().GetResource(ctx, *from)
		if err != nil {
			return fmt.Errorf("load source: %w", err)
		}
		crumb, err := module.BuildBreadcrumb(ctx, source)
		if err != nil {
			return err
		}
		return writeJSON(out, crumb.Trail)

	case "tokens":
		set, err := module.ThemeTokens(*folder, bootstrap.SplitList(*themes)...)
		if err != nil {
			return err
		}
		values, err := set.Values()
		if err != nil {
			return err
		}
		return writeJSON(out, values)

	case "watch":
		res.Logger.Info("publish.cli.watch.started")
		return module.WatchThemes(ctx)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

type allocationLine struct {
	ResourceID string `json:"resource_id"`
	Path       string `json:"path,omitempty"`
	Conflict   bool   `json:"conflict,omitempty"`
	Reused     bool   `json:"reused,omitempty"`
	Error      string `json:"error,omitempty"`
}

func allocationReport(result *publish.AllocationResult) []allocationLine {
	lines := make([]allocationLine, 0, len(result.Allocations))
	for _, alloc := range result.Allocations {
		line := allocationLine{
			ResourceID: alloc.ResourceID,
			Path:       alloc.Entry.LocalPath,
			Conflict:   alloc.Conflict,
			Reused:     alloc.Reused,
		}
		if alloc.Err != nil {
			line.Error = alloc.Err.Error()
		}
		lines = append(lines, line)
	}
	return lines
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
