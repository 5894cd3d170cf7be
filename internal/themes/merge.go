package themes

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/resources"
	pubthemes "github.com/goliatone/go-publish/themes"
)

// TokenSet resolves tokens across an ordered list of themes. The first theme
// defining a key wins.
type TokenSet struct {
	order   []*Info
	folder  string
	offline bool
}

// MergeTokens orders themes most specific first, flattening each theme's base
// chain right after it. Offline reference tokens are rewritten relative to
// folder, the root-relative folder of the resource being rendered.
func MergeTokens(themes []*Info, folder string, mode resources.Mode) *TokenSet {
	set := &TokenSet{folder: folder, offline: mode != resources.ModeOnline}
	seen := map[string]bool{}
	for _, theme := range themes {
		for _, info := range theme.Chain() {
			if seen[info.ID] {
				continue
			}
			seen[info.ID] = true
			set.order = append(set.order, info)
		}
	}
	return set
}

// Themes returns the theme ids in lookup order.
func (s *TokenSet) Themes() []string {
	ids := make([]string, 0, len(s.order))
	for _, info := range s.order {
		ids = append(ids, info.ID)
	}
	return ids
}

// Token returns the winning token for key and the theme that defines it.
func (s *TokenSet) Token(key string) (Token, *Info, bool) {
	for _, info := range s.order {
		if tok, ok := info.Token(key); ok {
			return tok, info, true
		}
	}
	return Token{}, nil, false
}

// Lookup resolves key to its value. Include tokens are read from disk on
// every call.
func (s *TokenSet) Lookup(key string) (string, error) {
	tok, _, ok := s.Token(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTokenNotFound, key)
	}
	value, err := tok.Resolve()
	if err != nil {
		return "", err
	}
	if s.offline && tok.Kind == pubthemes.TokenReference {
		return paths.Relative(s.folder, value), nil
	}
	return value, nil
}

// Keys returns every key visible through the set, sorted.
func (s *TokenSet) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, info := range s.order {
		for key := range info.Tokens {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Values resolves every visible key.
func (s *TokenSet) Values() (map[string]string, error) {
	keys := s.Keys()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := s.Lookup(key)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}
