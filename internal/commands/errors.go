package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrAllocatorDisabled = errors.New("commands: allocator service is not configured")
	ErrWatcherDisabled   = errors.New("commands: theme watcher is not configured")
)

const (
	commandValidationCode   = "PUBLISH_COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "PUBLISH_COMMAND_CANCELED"
	commandContextTimeout   = "PUBLISH_COMMAND_TIMEOUT"
	commandContextErrorCode = "PUBLISH_COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "PUBLISH_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
