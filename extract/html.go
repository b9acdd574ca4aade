package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// maxColSpan caps colspan attributes so a hostile value cannot blow up a row
const maxColSpan = 64

// htmlSource serves an HTML document as a single page
type htmlSource struct {
	regions []model.RawRegion
}

func openHTML(data []byte) (*htmlSource, error) {
	w, err := walkHTML(data, nil)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to parse HTML", Err: err}
	}
	return &htmlSource{regions: w.regions}, nil
}

// imageResolver loads the image an img src attribute points to
type imageResolver func(src string) (model.RawRegion, error)

// walkHTML collects the regions of an HTML or XHTML document. Images other
// than data: URIs are loaded through resolve when it is set.
func walkHTML(data []byte, resolve imageResolver) (*htmlWalker, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	w := &htmlWalker{resolve: resolve}
	w.traverseNode(body)
	w.flushList()
	return w, nil
}

func (s *htmlSource) pageCount() int { return 1 }

func (s *htmlSource) close() error { return nil }

func (s *htmlSource) page(context.Context, int) Page {
	regions := make([]model.RawRegion, len(s.regions))
	copy(regions, s.regions)
	return Page{Regions: regions}
}

// htmlWalker collects regions in document order
type htmlWalker struct {
	regions  []model.RawRegion
	warnings []error
	resolve  imageResolver

	// list items collected for the outermost open list
	listDepth int
	listItems []string
}

func (w *htmlWalker) addText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.regions = append(w.regions, model.RawRegion{
		Type:     model.RegionText,
		Text:     text,
		MIMEType: "text/html",
	})
}

// flushList emits the pending list as one text region, one item per line
func (w *htmlWalker) flushList() {
	if len(w.listItems) == 0 {
		return
	}
	w.addText(strings.Join(w.listItems, "\n"))
	w.listItems = nil
}

// traverseNode recursively processes DOM nodes.
func (w *htmlWalker) traverseNode(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			w.flushList()
			w.addText(getTextContent(n))
			return

		case "p", "div":
			if isBlockContainer(n) {
				break
			}
			if w.listDepth == 0 {
				w.addText(getTextContent(n))
			}
			w.collectImages(n)
			return

		case "pre":
			w.flushList()
			w.addText(getTextContent(n))
			return

		case "ul", "ol":
			if w.listDepth == 0 {
				w.flushList()
			}
			w.listDepth++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				w.traverseNode(c)
			}
			w.listDepth--
			if w.listDepth == 0 {
				w.flushList()
			}
			return

		case "li":
			if text := getDirectTextContent(n); text != "" {
				w.listItems = append(w.listItems, strings.Repeat("  ", max(w.listDepth-1, 0))+"- "+text)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
					w.traverseNode(c)
				}
			}
			return

		case "table":
			w.flushList()
			if t := parseTable(n); t != nil {
				w.regions = append(w.regions, model.RawRegion{
					Type:     model.RegionTable,
					Table:    t,
					MIMEType: "text/html",
				})
			}
			return

		case "img":
			w.addImage(n)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.traverseNode(c)
	}
}

// collectImages emits the images nested inside an inline block
func (w *htmlWalker) collectImages(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || shouldSkipElement(c.Data) {
			continue
		}
		if c.Data == "img" {
			w.addImage(c)
			continue
		}
		w.collectImages(c)
	}
}

// addImage emits an image region for an inline data: URI, or for a src the
// walker's resolver can load. Remote images are not fetched.
func (w *htmlWalker) addImage(n *html.Node) {
	src := getAttr(n, "src")
	if data, mimeType, ok := decodeDataURI(src); ok {
		w.regions = append(w.regions, model.RawRegion{
			Type:     model.RegionImage,
			Data:     data,
			MIMEType: mimeType,
		})
		return
	}
	if w.resolve == nil || src == "" {
		return
	}

	region, err := w.resolve(src)
	if errors.Is(err, zipdoc.ErrNotRaster) {
		return
	}
	if err != nil {
		w.warnings = append(w.warnings, fmt.Errorf("image %s: %w", src, err))
		return
	}
	region.Type = model.RegionImage
	w.regions = append(w.regions, region)
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data>
func decodeDataURI(src string) ([]byte, string, bool) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(strings.ToLower(src), "data:") {
		return nil, "", false
	}
	header, payload, found := strings.Cut(src[len("data:"):], ",")
	if !found {
		return nil, "", false
	}

	params := strings.Split(header, ";")
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", false
	}

	if isBase64 {
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
			if err != nil {
				return nil, "", false
			}
		}
		return data, mimeType, true
	}

	raw, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", false
	}
	return []byte(raw), mimeType, true
}

// parseTable extracts the cell grid from an HTML table element. Header rows
// are the rows of thead, or leading rows made only of th cells.
func parseTable(tableNode *html.Node) *model.RawTable {
	t := &model.RawTable{}
	theadRows := 0

	var addRows func(section *html.Node, inHead bool)
	addRows = func(section *html.Node, inHead bool) {
		for c := section.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				addRows(c, true)
			case "tbody", "tfoot":
				addRows(c, false)
			case "tr":
				row, allTH := parseTableRow(c)
				if len(row) == 0 {
					continue
				}
				// a header row only counts while no body row has been seen
				if (inHead || allTH) && theadRows == len(t.Rows) {
					theadRows++
				}
				t.Rows = append(t.Rows, row)
			}
		}
	}
	addRows(tableNode, false)

	if len(t.Rows) == 0 {
		return nil
	}
	if theadRows < len(t.Rows) {
		t.HeaderRows = theadRows
	}
	return t
}

// parseTableRow returns the row's cells with colspan expanded, and whether
// every cell was a th.
func parseTableRow(tr *html.Node) ([]string, bool) {
	var row []string
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data != "th" {
			allTH = false
		}
		text := strings.Join(strings.Fields(getTextContent(c)), " ")

		span := 1
		if v := getAttr(c, "colspan"); v != "" {
			fmt.Sscanf(v, "%d", &span)
		}
		span = min(max(span, 1), maxColSpan)

		row = append(row, text)
		for i := 1; i < span; i++ {
			row = append(row, "")
		}
	}
	return row, allTH && len(row) > 0
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "nav", "head":
		return true
	}
	return false
}

// isBlockContainer returns true if the element is a block container with block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "article", "section":
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "th":
			result.WriteString(" ")
		}
	}
}

// getDirectTextContent gets text content from a node, excluding nested block elements.
func getDirectTextContent(n *html.Node) string {
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			result.WriteString(c.Data)
		} else if c.Type == html.ElementNode {
			switch c.Data {
			case "ul", "ol", "div", "p", "table", "blockquote":
			default:
				result.WriteString(getTextContent(c))
			}
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}
