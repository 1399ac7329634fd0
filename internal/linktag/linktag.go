// Package linktag renders and reads the stylesheet <link> elements that
// reference published stylesheet records.
package linktag

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
)

// Tag is one stylesheet reference.
type Tag struct {
	Href      string
	Integrity string
}

// FromRecords builds tags in record order. siteURL, when set, prefixes every href.
func FromRecords(records pipeline.Records, siteURL string) []Tag {
	tags := make([]Tag, 0, records.Len())
	for _, key := range records.Keys() {
		rec, _ := records.Get(key)
		tags = append(tags, Tag{Href: joinURL(siteURL, rec.CSSFile), Integrity: rec.Integrity})
	}
	return tags
}

func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Node returns the <link> element for t. integrity and crossorigin are only
// set when t carries an integrity attribute.
func (t Tag) Node() *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     atom.Link.String(),
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "href", Val: t.Href},
		},
	}
	if t.Integrity != "" {
		n.Attr = append(n.Attr,
			html.Attribute{Key: "integrity", Val: t.Integrity},
			html.Attribute{Key: "crossorigin", Val: "anonymous"},
		)
	}
	return n
}

// Render writes one <link> element per line.
func Render(w io.Writer, tags []Tag) error {
	for _, t := range tags {
		if err := html.Render(w, t.Node()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(tags []Tag) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, tags); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Extract returns every <link rel="stylesheet"> in an HTML document or fragment, in document order.
func Extract(r io.Reader) ([]Tag, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Link && isStylesheet(n) {
			tags = append(tags, Tag{Href: attr(n, "href"), Integrity: attr(n, "integrity")})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tags, nil
}

func isStylesheet(n *html.Node) bool {
	for _, rel := range strings.Fields(attr(n, "rel")) {
		if strings.EqualFold(rel, "stylesheet") {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
