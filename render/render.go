// Package render turns markdown documents into HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultStyle is the chroma style used for code block colors.
const DefaultStyle = "github"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 56rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
pre { padding: .75rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: .25rem .5rem; }
nav { margin-bottom: 1rem; font-size: .9rem; }
</style>
<style>{{.CodeCSS}}</style>
</head>
<body>
<nav>{{.Path}}</nav>
<article>
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title   string
	Path    string
	CodeCSS template.CSS
	Body    template.HTML
}

// Renderer converts markdown to HTML with GFM extensions and highlighted code blocks.
// Raw HTML embedded in documents is not passed through.
type Renderer struct {
	markdown goldmark.Markdown
	codeCSS  template.CSS
}

// New creates a renderer using the named chroma style, or DefaultStyle if empty.
func New(styleName string) (*Renderer, error) {
	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)

	var css bytes.Buffer
	if err := writeStyleCSS(&css, style); err != nil {
		return nil, fmt.Errorf("generating code style: %w", err)
	}

	markdown := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(styleName),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Renderer{markdown: markdown, codeCSS: template.CSS(css.String())}, nil
}

func writeStyleCSS(w io.Writer, style *chroma.Style) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, style)
}

// HTML converts a markdown source into an HTML fragment.
func (r *Renderer) HTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Page renders source as a standalone HTML page titled after the document.
func (r *Renderer) Page(w io.Writer, relativePath string, source []byte) error {
	body, err := r.HTML(source)
	if err != nil {
		return err
	}

	return pageTemplate.Execute(w, pageData{
		Title:   pageTitle(relativePath, source),
		Path:    relativePath,
		CodeCSS: r.codeCSS,
		Body:    template.HTML(body),
	})
}

// pageTitle uses the first level-one heading, falling back to the path.
func pageTitle(relativePath string, source []byte) string {
	for _, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return relativePath
}
