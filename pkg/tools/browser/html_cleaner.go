package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanedHTML is a page reduced to its semantic skeleton.
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

var (
	skippedTags = tagSet("script", "style", "noscript", "iframe", "embed", "object", "svg", "template", "head")
	blockTags   = tagSet("div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th",
		"form", "fieldset", "blockquote", "pre", "dialog")
	voidTags  = tagSet("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr")
	keptAttrs = tagSet("id", "class", "role", "name", "title", "aria-label", "aria-describedby", "contenteditable", "placeholder")
)

func tagSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// keepAttribute reports whether an attribute helps the model target the element.
func keepAttribute(tag, key string) bool {
	key = strings.ToLower(key)
	if keptAttrs[key] || strings.HasPrefix(key, "data-") {
		return true
	}
	switch tag {
	case "a":
		return key == "href" || key == "target"
	case "img":
		return key == "src" || key == "alt"
	case "input", "textarea", "select":
		return key == "type" || key == "value"
	case "button":
		return key == "type"
	case "form":
		return key == "action" || key == "method"
	}
	return false
}

type htmlCleaner struct {
	out       strings.Builder
	limit     int
	truncated bool
}

// cleanHTML strips scripts, styles and presentational attributes from rawHTML,
// keeping structure plus the attributes useful as selectors. Output is capped
// at maxLength bytes.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &htmlCleaner{limit: maxLength}
	c.walk(doc, 0)

	return &CleanedHTML{
		HTML:        strings.TrimSpace(c.out.String()),
		Title:       pageTitle(doc),
		Description: metaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

// write appends s, clipping at the limit. It returns false once the limit is hit.
func (c *htmlCleaner) write(s string) bool {
	if c.truncated {
		return false
	}
	if room := c.limit - c.out.Len(); len(s) > room {
		c.out.WriteString(truncateUTF8(s, room))
		c.out.WriteString("...")
		c.truncated = true
		return false
	}
	c.out.WriteString(s)
	return true
}

func (c *htmlCleaner) walk(n *html.Node, depth int) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		if text := collapseSpace(n.Data); text != "" {
			c.write(html.EscapeString(text))
		}
		return
	case html.ElementNode:
		c.element(n, depth)
		return
	}
	for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
		c.walk(child, depth)
	}
}

func (c *htmlCleaner) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if skippedTags[tag] {
		return
	}
	if tag == "html" || tag == "body" {
		for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
			c.walk(child, depth)
		}
		return
	}

	indent := ""
	if blockTags[tag] {
		indent = "\n" + strings.Repeat("  ", depth)
	}

	var open strings.Builder
	open.WriteString(indent + "<" + tag)
	for _, a := range n.Attr {
		if keepAttribute(tag, a.Key) {
			fmt.Fprintf(&open, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
		}
	}
	open.WriteString(">")
	if !c.write(open.String()) {
		return
	}
	if voidTags[tag] {
		return
	}

	for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
		c.walk(child, depth+1)
	}
	if c.truncated {
		return
	}
	c.write(indent + "</" + tag + ">")
}

// findAll returns every element node under n for which match is true.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return found
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasTag(tags ...string) func(*html.Node) bool {
	set := tagSet(tags...)
	return func(n *html.Node) bool { return set[n.Data] }
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the visible text under n with whitespace collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return collapseSpace(b.String())
}

func pageTitle(doc *html.Node) string {
	if t := findFirst(doc, hasTag("title")); t != nil {
		return textContent(t)
	}
	return ""
}

func metaDescription(doc *html.Node) string {
	meta := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "meta" && strings.EqualFold(attr(n, "name"), "description")
	})
	if meta == nil {
		return ""
	}
	return strings.TrimSpace(attr(meta, "content"))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
