package browser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ExtractContent renders the page, or the element matching opts.Selector, in
// the requested format.
func (s *Session) ExtractContent(opts ExtractOptions) (string, error) {
	s.touch()
	if opts.Format == "" {
		opts.Format = FormatMarkdown
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	if opts.Format == FormatText {
		selector := opts.Selector
		if selector == "" {
			selector = "body"
		}
		text, err := s.Page.InnerText(selector)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
		return truncateContent(strings.TrimSpace(text), opts.MaxLength), nil
	}

	raw, err := s.rawHTML(opts.Selector)
	if err != nil {
		return "", err
	}
	return renderHTML(raw, s.Page.URL(), opts)
}

func (s *Session) rawHTML(selector string) (string, error) {
	if selector == "" {
		content, err := s.Page.Content()
		if err != nil {
			return "", fmt.Errorf("failed to read page content: %w", err)
		}
		return content, nil
	}
	content, err := s.Page.InnerHTML(selector)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return content, nil
}

// renderHTML converts raw page HTML into one of the non-text formats.
func renderHTML(raw, pageURL string, opts ExtractOptions) (string, error) {
	switch opts.Format {
	case FormatHTML:
		cleaned, err := cleanHTML(raw, opts.MaxLength)
		if err != nil {
			return "", err
		}
		return cleaned.HTML, nil
	case FormatMarkdown:
		doc, err := html.Parse(strings.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		return truncateContent(toMarkdown(doc), opts.MaxLength), nil
	case FormatStructured:
		doc, err := html.Parse(strings.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		out, err := json.MarshalIndent(structure(doc, pageURL, opts.MaxLength), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode structured content: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

const maxStructuredLinks = 50

func structure(doc *html.Node, pageURL string, maxLength int) StructuredContent {
	sc := StructuredContent{
		Title:       pageTitle(doc),
		URL:         pageURL,
		Description: metaDescription(doc),
		Headings:    []string{},
		Links:       []Link{},
	}
	for _, h := range findAll(doc, hasTag("h1", "h2", "h3")) {
		if text := textContent(h); text != "" {
			sc.Headings = append(sc.Headings, text)
		}
	}
	for _, a := range findAll(doc, hasTag("a")) {
		href := attr(a, "href")
		if href == "" || strings.HasPrefix(href, "javascript:") {
			continue
		}
		sc.Links = append(sc.Links, Link{Text: textContent(a), Href: href})
		if len(sc.Links) == maxStructuredLinks {
			break
		}
	}
	for _, f := range findAll(doc, hasTag("form")) {
		form := Form{Action: attr(f, "action"), Method: strings.ToLower(attr(f, "method")), Fields: []string{}}
		for _, field := range findAll(f, hasTag("input", "textarea", "select")) {
			if name := firstNonEmpty(attr(field, "name"), attr(field, "id"), attr(field, "aria-label")); name != "" {
				form.Fields = append(form.Fields, name)
			}
		}
		sc.Forms = append(sc.Forms, form)
	}
	body := doc
	if b := findFirst(doc, hasTag("body")); b != nil {
		body = b
	}
	sc.Body = truncateContent(textContent(body), maxLength)
	return sc
}

type markdownWriter struct {
	b         strings.Builder
	last      byte
	listDepth int
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// toMarkdown renders the readable parts of a document as Markdown.
func toMarkdown(doc *html.Node) string {
	root := doc
	if body := findFirst(doc, hasTag("body")); body != nil {
		root = body
	}
	w := &markdownWriter{}
	w.children(root)

	lines := strings.Split(w.b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func (w *markdownWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *markdownWriter) write(s string) {
	if s == "" {
		return
	}
	w.b.WriteString(s)
	w.last = s[len(s)-1]
}

// inline writes s, separated by a space from preceding inline text.
func (w *markdownWriter) inline(s string) {
	if s == "" {
		return
	}
	if w.last != 0 && w.last != '\n' && w.last != ' ' {
		w.write(" ")
	}
	w.write(s)
}

func (w *markdownWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline(collapseSpace(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	tag := n.Data
	if skippedTags[tag] {
		return
	}
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tag[1] - '0')
		w.write("\n\n" + strings.Repeat("#", level) + " " + textContent(n) + "\n\n")
	case "a":
		text := textContent(n)
		href := attr(n, "href")
		if href == "" || text == "" {
			w.inline(text)
			return
		}
		w.inline(fmt.Sprintf("[%s](%s)", text, href))
	case "img":
		if alt := attr(n, "alt"); alt != "" {
			w.inline(fmt.Sprintf("![%s](%s)", alt, attr(n, "src")))
		}
	case "strong", "b":
		if text := textContent(n); text != "" {
			w.inline("**" + text + "**")
		}
	case "em", "i":
		if text := textContent(n); text != "" {
			w.inline("_" + text + "_")
		}
	case "code":
		w.inline("`" + textContent(n) + "`")
	case "pre":
		w.write("\n\n```\n" + strings.TrimSpace(rawText(n)) + "\n```\n\n")
	case "br":
		w.write("\n")
	case "hr":
		w.write("\n\n---\n\n")
	case "ul", "ol":
		w.listDepth++
		w.write("\n")
		w.children(n)
		w.listDepth--
		w.write("\n")
	case "li":
		w.write("\n" + strings.Repeat("  ", max(0, w.listDepth-1)) + "- ")
		w.children(n)
	case "input", "textarea", "select", "button":
		w.inline(formControl(n))
	default:
		if blockTags[tag] {
			w.write("\n\n")
			w.children(n)
			w.write("\n\n")
			return
		}
		w.children(n)
	}
}

// formControl describes an input so the model knows it exists.
func formControl(n *html.Node) string {
	label := firstNonEmpty(attr(n, "aria-label"), attr(n, "placeholder"), attr(n, "name"), attr(n, "id"))
	if n.Data == "button" {
		label = firstNonEmpty(textContent(n), label)
	}
	if label == "" {
		return ""
	}
	return fmt.Sprintf("[%s: %s]", n.Data, label)
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// truncateContent caps s at maxLength bytes and marks the cut.
func truncateContent(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return truncateUTF8(s, maxLength) + "\n... (truncated)"
}
