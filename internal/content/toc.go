package content

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultTOCDepth is the deepest heading level included by default.
const DefaultTOCDepth = 3

// TOCItem is one heading in a table of contents.
type TOCItem struct {
	Title string
	ID    string
	Level int
	Items []TOCItem
}

type tocNode struct {
	item     TOCItem
	children []*tocNode
}

// TableOfContents extracts the h1..hN headings of rendered HTML, N being
// maxDepth (DefaultTOCDepth when maxDepth <= 0). Each heading is nested under
// the nearest preceding shallower heading. Deeper headings are left out.
// Headings without an id attribute get one from Slugify of their text.
func TableOfContents(document string, maxDepth int) []TOCItem {
	if maxDepth <= 0 {
		maxDepth = DefaultTOCDepth
	}

	var (
		roots []*tocNode
		stack []*tocNode
	)

	z := html.NewTokenizer(strings.NewReader(document))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken {
			continue
		}

		name, hasAttr := z.TagName()
		level := headingLevel(string(name))
		if level == 0 {
			continue
		}

		id := ""
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "id" {
				id = strings.TrimSpace(string(val))
			}
		}

		title := headingText(z, string(name))
		if level > maxDepth || title == "" {
			continue
		}
		if id == "" {
			id = Slugify(title)
		}

		node := &tocNode{item: TOCItem{Title: title, ID: id, Level: level}}
		for len(stack) > 0 && stack[len(stack)-1].item.Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		stack = append(stack, node)
	}

	return flattenTOC(roots)
}

// headingText collects the text inside the current heading up to its end tag.
func headingText(z *html.Tokenizer, tag string) string {
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				return strings.Join(strings.Fields(b.String()), " ")
			}
		}
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func flattenTOC(nodes []*tocNode) []TOCItem {
	if len(nodes) == 0 {
		return nil
	}
	items := make([]TOCItem, len(nodes))
	for i, n := range nodes {
		items[i] = n.item
		items[i].Items = flattenTOC(n.children)
	}
	return items
}
