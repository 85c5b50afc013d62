// Package render turns SOP markup into line-oriented blocks for terminals and
// plain-text clipboards.
package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Kind int

const (
	Paragraph Kind = iota
	Heading
	Bullet
	Step
)

type Block struct {
	Kind    Kind
	Text    string
	Index   int  // 1-based position for Step
	Warning bool // inside a warning block
}

// Parse reads an SOP fragment. Unknown tags are flattened into their text.
func Parse(markup string) ([]Block, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	w := &walker{}
	for _, n := range nodes {
		w.node(n, false)
	}
	return w.blocks, nil
}

// PlainText renders markup as plain text. Markup that fails to parse is
// returned unchanged.
func PlainText(markup string) string {
	blocks, err := Parse(markup)
	if err != nil {
		return markup
	}
	return Lines(blocks, nil)
}

// Style decorates one rendered line; nil leaves lines as is.
type Style func(b Block, line string) string

func Lines(blocks []Block, style Style) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
			if b.Kind == Heading {
				sb.WriteString("\n")
			}
		}
		line := format(b)
		if style != nil {
			line = style(b, line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func format(b Block) string {
	var prefix string
	switch b.Kind {
	case Bullet:
		prefix = "- "
	case Step:
		prefix = strconv.Itoa(b.Index) + ". "
	}
	if b.Warning && b.Kind != Heading {
		prefix = "! " + prefix
	}
	return prefix + b.Text
}

type walker struct {
	blocks []Block
}

func (w *walker) add(b Block) {
	if b.Text == "" {
		return
	}
	w.blocks = append(w.blocks, b)
}

func (w *walker) node(n *html.Node, warning bool) {
	switch n.Type {
	case html.TextNode:
		w.add(Block{Kind: Paragraph, Text: collapse(n.Data), Warning: warning})
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.add(Block{Kind: Heading, Text: text(n), Warning: warning})
	case atom.P:
		w.add(Block{Kind: Paragraph, Text: text(n), Warning: warning})
	case atom.Ul, atom.Ol:
		w.list(n, n.DataAtom == atom.Ol, warning)
	case atom.Script, atom.Style:
	default:
		if n.DataAtom == atom.Div && hasClass(n, "warning") {
			warning = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c, warning)
		}
	}
}

func (w *walker) list(n *html.Node, ordered, warning bool) {
	index := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			index++
			kind := Bullet
			if ordered {
				kind = Step
			}
			w.add(Block{Kind: kind, Text: text(c), Index: index, Warning: warning})
			continue
		}
		w.node(c, warning)
	}
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(sb.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
