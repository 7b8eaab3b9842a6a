package content

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns post bodies into HTML. Bodies are authored by the site
// owner, so raw HTML blocks are passed through.
type Renderer struct {
	md       goldmark.Markdown
	tocDepth int
}

// NewRenderer creates a GitHub-flavoured Markdown renderer that assigns ids
// to headings so the table of contents can link to them.
func NewRenderer(tocDepth int) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
		tocDepth: tocDepth,
	}
}

// Render returns the HTML body of post and its table of contents.
func (r *Renderer) Render(post *Post) (string, []TOCItem, error) {
	body := post.Content
	if post.IsMDX() {
		body = stripMDXStatements(body)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", nil, err
	}

	out := buf.String()
	return out, TableOfContents(out, r.tocDepth), nil
}

// stripMDXStatements drops top-level import and export lines, which have no
// meaning outside an MDX toolchain. Lines inside fenced code blocks are kept.
func stripMDXStatements(body string) string {
	var b strings.Builder
	inFence := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence && (strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ")) {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}
