// Package extract converts an HTML document into the tag-grouped payload
// that graph.Build consumes.
//
// Every element below <body> is visited in document order. Elements are
// grouped by lower-case tag name, with groups ordered by first appearance.
// Each element records its attributes and its rendered text: the text of
// all descendant text nodes, whitespace-collapsed, ignoring the bodies of
// script, style, template and noscript elements nested inside it.
package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/domgraph/pkg/errors"
	"github.com/matzehuels/domgraph/pkg/graph"
)

// FromHTML parses r and returns the tag groups of its body.
func FromHTML(r io.Reader) (graph.TagGroups, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse html")
	}
	body := findBody(doc)
	if body == nil {
		return graph.TagGroups{}, nil
	}

	var (
		groups = graph.TagGroups{}
		index  = make(map[string]int)
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			tag := strings.ToLower(c.Data)
			i, ok := index[tag]
			if !ok {
				i = len(groups)
				index[tag] = i
				groups = append(groups, graph.TagGroup{Tag: tag, Elements: []graph.Element{}})
			}
			groups[i].Elements = append(groups[i].Elements, graph.Element{
				Attributes: attributes(c),
				InnerText:  innerText(c),
			})
			walk(c)
		}
	}
	walk(body)
	return groups, nil
}

// FromString is FromHTML over a string.
func FromString(s string) (graph.TagGroups, error) {
	return FromHTML(strings.NewReader(s))
}

// FromFile reads and extracts the HTML file at path.
func FromFile(path string) (graph.TagGroups, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return FromHTML(f)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// attributes returns the element's attributes; later duplicates win.
func attributes(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		attrs[name] = a.Val
	}
	return attrs
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case html.ElementNode:
				if hidden(c) {
					continue
				}
				if c.DataAtom == atom.Br {
					b.WriteByte(' ')
				}
				collect(c)
			}
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func hidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	}
	return false
}
