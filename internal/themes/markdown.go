package themes

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

func isMarkdown(rel string) bool {
	switch strings.ToLower(path.Ext(rel)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

func newMarkdownEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// renderMarkdown returns a thunk that reads file, drops its front matter and
// renders the body to HTML on each call.
func renderMarkdown(file string) func() (string, error) {
	return func() (string, error) {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("themes: read markdown: %w", err)
		}
		var meta map[string]any
		body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
		if err != nil {
			return "", fmt.Errorf("themes: parse front matter: %w", err)
		}
		var buf bytes.Buffer
		if err := newMarkdownEngine().Convert(body, &buf); err != nil {
			return "", fmt.Errorf("themes: render markdown: %w", err)
		}
		return buf.String(), nil
	}
}
