package links

import "errors"

var (
	// ErrNotFound is returned when the target is neither a known resource nor a
	// known content object, or when a forward reference cannot be predicted.
	// Callers treat it as recoverable and render a placeholder.
	ErrNotFound = errors.New("links: target not found")

	ErrSourceRequired     = errors.New("links: source resource is required")
	ErrRepositoryRequired = errors.New("links: resource repository is required")
	ErrLayoutRequired     = errors.New("links: path layout is required")
	ErrUnsupportedMode    = errors.New("links: unsupported mode")
)
