package themes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrThemeIDRequired   = errors.New("themes: theme id is required")
	ErrThemeNotFound     = errors.New("themes: theme not found")
	ErrTokenNotFound     = errors.New("themes: token not found")
	ErrManifestMismatch  = errors.New("themes: manifest id does not match folder")
	ErrThemesDirRequired = errors.New("themes: themes directory is required")
	ErrManifestAmbiguous = errors.New("themes: theme folder holds more than one manifest")
)

// CyclicDependencyError reports a base chain that revisits a theme.
type CyclicDependencyError struct {
	// Chain lists the ids in load order, ending with the revisited id.
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("themes: cyclic base chain %s", strings.Join(e.Chain, " -> "))
}
