package content

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// MarkdownToHTML converts the small Markdown subset used by legal documents:
// #, ## and ### headings, --- dividers, **bold**, [text](url) links,
// contiguous "- " list items and blank-line separated paragraphs. All text
// is HTML-escaped. It is not a general Markdown renderer.
func MarkdownToHTML(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(md), "\n")

	var (
		out    []string
		para   []string
		inList bool
	)

	flushPara := func() {
		if len(para) > 0 {
			out = append(out, "<p>"+strings.Join(para, "\n")+"</p>")
			para = nil
		}
	}
	closeList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}
	block := func(s string) {
		flushPara()
		closeList()
		out = append(out, s)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushPara()
			closeList()
		case strings.HasPrefix(trimmed, "### "):
			block("<h3>" + inlineMarkdown(trimmed[4:]) + "</h3>")
		case strings.HasPrefix(trimmed, "## "):
			block("<h2>" + inlineMarkdown(trimmed[3:]) + "</h2>")
		case strings.HasPrefix(trimmed, "# "):
			block("<h1>" + inlineMarkdown(trimmed[2:]) + "</h1>")
		case trimmed == "---":
			block("<hr>")
		case strings.HasPrefix(trimmed, "- "):
			flushPara()
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+inlineMarkdown(trimmed[2:])+"</li>")
		default:
			closeList()
			para = append(para, inlineMarkdown(trimmed))
		}
	}
	flushPara()
	closeList()

	return strings.Join(out, "\n")
}

// inlineMarkdown escapes text and then applies bold and link markup.
func inlineMarkdown(text string) string {
	escaped := html.EscapeString(strings.TrimSpace(text))
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")

	return linkPattern.ReplaceAllStringFunc(escaped, func(m string) string {
		parts := linkPattern.FindStringSubmatch(m)
		label, href := parts[1], parts[2]
		if !safeHref(html.UnescapeString(href)) {
			return label
		}
		return `<a href="` + href + `">` + label + `</a>`
	})
}

func safeHref(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"http://", "https://", "mailto:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}
