package themes

import "strings"

const (
	// ReferencePrefix marks tokens addressing a theme file.
	ReferencePrefix = "theme://"
	// IncludePrefix marks tokens whose value is a theme file's content.
	IncludePrefix = "include://"
	// MarkdownPrefix marks tokens whose value is a theme markdown file
	// rendered to HTML.
	MarkdownPrefix = "markdown://"
)

// TokenKind distinguishes how a token value is produced.
type TokenKind string

const (
	TokenValue     TokenKind = "value"
	TokenReference TokenKind = "reference"
	TokenInclude   TokenKind = "include"
	TokenMarkdown  TokenKind = "markdown"
)

// Token is one named theme value. Include and markdown tokens carry a loader
// that is invoked on every read.
type Token struct {
	Kind  TokenKind
	Value string
	Load  func() (string, error)
}

// Resolve returns the current value of the token.
func (t Token) Resolve() (string, error) {
	if t.Load != nil {
		return t.Load()
	}
	return t.Value, nil
}

// Info is a loaded theme. Parent is the loaded base theme, if any.
type Info struct {
	ID        string
	Base      string
	OnlineURL string
	// Dir is the theme folder relative to the publication root.
	Dir    string
	Tokens map[string]Token
	Parent *Info
}

// Chain returns the theme followed by its bases, most derived first.
func (i *Info) Chain() []*Info {
	var chain []*Info
	seen := map[*Info]bool{}
	for current := i; current != nil && !seen[current]; current = current.Parent {
		seen[current] = true
		chain = append(chain, current)
	}
	return chain
}

// Token looks up a token defined directly on this theme.
func (i *Info) Token(key string) (Token, bool) {
	if i == nil {
		return Token{}, false
	}
	tok, ok := i.Tokens[key]
	return tok, ok
}

// ReferenceKey returns the reference token key for a theme relative file.
func ReferenceKey(rel string) string {
	return ReferencePrefix + strings.TrimLeft(rel, "/")
}

// IncludeKey returns the include token key for a theme relative file.
func IncludeKey(rel string) string {
	return IncludePrefix + strings.TrimLeft(rel, "/")
}

// MarkdownKey returns the rendered markdown token key for a theme relative file.
func MarkdownKey(rel string) string {
	return MarkdownPrefix + strings.TrimLeft(rel, "/")
}
