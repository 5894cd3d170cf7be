package paths

import (
	"errors"
	"fmt"
)

var (
	ErrRootRequired    = errors.New("paths: repository root is required")
	ErrUnknownType     = errors.New("paths: unknown resource type")
	ErrIDRequired      = errors.New("paths: resource id is required")
	ErrPathRequired    = errors.New("paths: path is required")
	ErrPathOutsideRoot = errors.New("paths: path escapes the repository root")
)

// ExhaustedError reports that no conflict-free candidate was found before the
// attempt bound was reached.
type ExhaustedError struct {
	Path     string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("paths: no conflict-free name for %q after %d attempts", e.Path, e.Attempts)
}

// InvalidConfigurationError is returned at construction time when the profile
// does not resolve against the repository root.
type InvalidConfigurationError struct {
	Root string
	Err  error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("paths: invalid configuration for root %q", e.Root)
	}
	return fmt.Sprintf("paths: invalid configuration for root %q: %v", e.Root, e.Err)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return e.Err
}
