package paths

import (
	"path"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	untitledName      = "untitled"
	maxBaseNameLength = 96
	maxExtLength      = 16
)

// SanitizeBaseName turns a human title into a filesystem-safe stem: accents
// are folded, letters lowercased and every other run collapses into "_".
func SanitizeBaseName(title string) string {
	folded := foldDiacritics(strings.TrimSpace(title))
	if normalized, err := slug.Normalize(folded); err == nil && normalized != "" {
		folded = normalized
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			if b.Len() >= maxBaseNameLength {
				break
			}
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return untitledName
	}
	return b.String()
}

// SanitizeExtension keeps a lowercased alphanumeric extension, dot included.
func SanitizeExtension(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= maxExtLength {
			break
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + b.String()
}

// SplitTitle separates an uploaded file title into stem and extension.
func SplitTitle(title string) (string, string) {
	trimmed := strings.TrimSpace(title)
	ext := path.Ext(trimmed)
	if ext == trimmed {
		// dotfiles such as ".env" have no stem
		return trimmed, ""
	}
	return strings.TrimSuffix(trimmed, ext), ext
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
