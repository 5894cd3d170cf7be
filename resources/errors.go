package resources

import (
	"errors"
	"fmt"
)

// ErrInvalidResource is returned when a record misses its identity or type.
var ErrInvalidResource = errors.New("resources: resource requires id and a known type")

// NotFoundError is returned when a resource, content object or render record
// cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
