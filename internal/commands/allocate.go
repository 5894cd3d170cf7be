package commands

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-publish/internal/allocator"
	"github.com/goliatone/go-publish/resources"
)

const (
	allocateMessageType    = "publish.allocate"
	watchThemesMessageType = "publish.themes.watch"
)

// AllocateCommand reserves output paths for a batch of resources.
type AllocateCommand struct {
	ResourceIDs []string             `json:"resource_ids"`
	Kind        resources.RenderKind `json:"kind,omitempty"`
	Reallocate  bool                 `json:"reallocate,omitempty"`
	// ResultCallback receives the batch outcome, including partial results
	// of a cancelled run.
	ResultCallback func(*allocator.Result) `json:"-"`
}

func (AllocateCommand) Type() string { return allocateMessageType }

func (m AllocateCommand) Validate() error {
	errs := validation.Errors{}
	if len(m.ResourceIDs) == 0 {
		errs["resource_ids"] = validation.NewError("publish.allocate.resource_ids_required", "at least one resource id is required")
	}
	for _, id := range m.ResourceIDs {
		if strings.TrimSpace(id) == "" {
			errs["resource_ids"] = validation.NewError("publish.allocate.resource_id_blank", "resource ids must not be blank")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AllocateHandler runs AllocateCommand against the allocator service.
type AllocateHandler struct {
	service allocator.Service
	inner   *Handler[AllocateCommand]
}

func NewAllocateHandler(service allocator.Service, opts ...HandlerOption[AllocateCommand]) *AllocateHandler {
	exec := func(ctx context.Context, msg AllocateCommand) error {
		result, err := service.Allocate(ctx, allocator.Request{
			ResourceIDs: msg.ResourceIDs,
			Kind:        msg.Kind,
			Reallocate:  msg.Reallocate,
		})
		if msg.ResultCallback != nil && result != nil {
			msg.ResultCallback(result)
		}
		return err
	}
	base := []HandlerOption[AllocateCommand]{WithOperation[AllocateCommand]("allocate")}
	return &AllocateHandler{service: service, inner: NewHandler(exec, append(base, opts...)...)}
}

func (h *AllocateHandler) Execute(ctx context.Context, msg AllocateCommand) error {
	if h.service == nil {
		return ErrAllocatorDisabled
	}
	return h.inner.Execute(ctx, msg)
}

// ThemeWatcher is the part of the theme watcher the watch command drives.
type ThemeWatcher interface {
	Run(ctx context.Context) error
}

// WatchThemesCommand keeps theme caches fresh until the context ends.
type WatchThemesCommand struct{}

func (WatchThemesCommand) Type() string { return watchThemesMessageType }

func (WatchThemesCommand) Validate() error { return nil }

// WatchThemesHandler blocks in the watcher. Cancellation of the caller's
// context is a clean stop, not a failure.
type WatchThemesHandler struct {
	watcher ThemeWatcher
	inner   *Handler[WatchThemesCommand]
}

func NewWatchThemesHandler(watcher ThemeWatcher, opts ...HandlerOption[WatchThemesCommand]) *WatchThemesHandler {
	exec := func(ctx context.Context, _ WatchThemesCommand) error {
		return watcher.Run(ctx)
	}
	base := []HandlerOption[WatchThemesCommand]{
		WithOperation[WatchThemesCommand]("themes.watch"),
		WithTimeout[WatchThemesCommand](0),
	}
	return &WatchThemesHandler{watcher: watcher, inner: NewHandler(exec, append(base, opts...)...)}
}

func (h *WatchThemesHandler) Execute(ctx context.Context, msg WatchThemesCommand) error {
	if h.watcher == nil {
		return ErrWatcherDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := h.inner.Execute(ctx, msg)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
