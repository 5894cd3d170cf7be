package commands

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-publish/internal/allocator"
	"github.com/goliatone/go-publish/resources"
)

type stubAllocator struct {
	got    allocator.Request
	result *allocator.Result
	err    error
}

func (s *stubAllocator) Allocate(_ context.Context, req allocator.Request) (*allocator.Result, error) {
	s.got = req
	return s.result, s.err
}

func TestAllocateHandlerForwardsRequestAndResult(t *testing.T) {
	svc := &stubAllocator{result: &allocator.Result{Allocated: 2}}
	handler := NewAllocateHandler(svc)

	var got *allocator.Result
	err := handler.Execute(context.Background(), AllocateCommand{
		ResourceIDs:    []string{"p1", "p2"},
		Kind:           resources.RenderKind("html"),
		Reallocate:     true,
		ResultCallback: func(r *allocator.Result) { got = r },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.Allocated != 2 {
		t.Fatalf("expected result callback with 2 allocations, got %+v", got)
	}
	if len(svc.got.ResourceIDs) != 2 || !svc.got.Reallocate || svc.got.Kind != "html" {
		t.Fatalf("unexpected request forwarded: %+v", svc.got)
	}
}

func TestAllocateHandlerRejectsEmptyBatch(t *testing.T) {
	svc := &stubAllocator{}
	err := NewAllocateHandler(svc).Execute(context.Background(), AllocateCommand{ResourceIDs: []string{" "}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := (AllocateCommand{}).Validate(); err == nil {
		t.Fatal("expected empty command to fail validation")
	}
}

func TestAllocateHandlerReportsPartialResultOnFailure(t *testing.T) {
	svc := &stubAllocator{result: &allocator.Result{Failed: 1}, err: context.Canceled}
	var got *allocator.Result
	err := NewAllocateHandler(svc).Execute(context.Background(), AllocateCommand{
		ResourceIDs:    []string{"p1"},
		ResultCallback: func(r *allocator.Result) { got = r },
	})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command failure, got %v", err)
	}
	if got == nil || got.Failed != 1 {
		t.Fatalf("expected partial result, got %+v", got)
	}
}

func TestAllocateHandlerWithoutService(t *testing.T) {
	err := NewAllocateHandler(nil).Execute(context.Background(), AllocateCommand{ResourceIDs: []string{"p1"}})
	if !errors.Is(err, ErrAllocatorDisabled) {
		t.Fatalf("expected ErrAllocatorDisabled, got %v", err)
	}
}

type blockingWatcher struct{}

func (blockingWatcher) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWatchThemesHandlerTreatsCancellationAsStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWatchThemesHandler(blockingWatcher{}).Execute(ctx, WatchThemesCommand{})
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}

	err := NewWatchThemesHandler(nil).Execute(context.Background(), WatchThemesCommand{})
	if !errors.Is(err, ErrWatcherDisabled) {
		t.Fatalf("expected ErrWatcherDisabled, got %v", err)
	}
}
