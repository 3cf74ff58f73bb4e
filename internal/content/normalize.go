// Package content turns CMS article bodies into reader-ready HTML.
package content

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	frameAllow = "accelerometer; encrypted-media; gyroscope; picture-in-picture; fullscreen"
	frameTitle = "YouTube video player"
)

// rawText elements keep their children as literal source.
var rawText = map[string]bool{
	"script":    true,
	"style":     true,
	"xmp":       true,
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
}

// noEmbed elements never have bare video links promoted to players.
var noEmbed = map[string]bool{
	"a":        true,
	"button":   true,
	"code":     true,
	"embed":    true,
	"iframe":   true,
	"object":   true,
	"option":   true,
	"pre":      true,
	"script":   true,
	"select":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

// Normalize restyles an HTML fragment for the reader using textColor for
// body text. It never fails: unparseable or empty input renders as "".
// Normalize(Normalize(s, c), c) == Normalize(s, c).
func Normalize(fragment, textColor string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	color := normalizeColor(textColor)
	root, err := parseFragment(unwrapDoubleEncoded(fragment))
	if err != nil {
		return ""
	}
	walk(root, color, false)
	return renderChildren(root)
}

func parseFragment(s string) (*html.Node, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), container)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func renderChildren(root *html.Node) string {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

func walk(n *html.Node, color string, protected bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if !rawText[n.Data] {
				c.Data = decodeFully(c.Data)
				if !protected {
					embedBareURLs(c, color)
				}
			}
		case html.ElementNode:
			if c.Namespace == "" {
				styleElement(c, color)
			}
			walk(c, color, protected || noEmbed[c.Data])
		}
		c = next
	}
}

func styleElement(n *html.Node, color string) {
	switch n.Data {
	case "iframe":
		if id, start, ok := VideoID(getAttr(n, "src")); ok {
			setAttr(n, "src", EmbedURL(id, start))
		}
		styleFrame(n)
	case "embed", "object":
		key := "src"
		if n.Data == "object" {
			key = "data"
		}
		if id, start, ok := VideoID(getAttr(n, key)); ok {
			setAttr(n, key, EmbedURL(id, start))
			styleFrame(n)
			return
		}
		setAttr(n, "style", mergeStyle(getAttr(n, "style"), embedStyle))
	default:
		if decls := elementStyle(n.Data, color); decls != nil {
			setAttr(n, "style", mergeStyle(getAttr(n, "style"), decls))
		}
	}
}

func styleFrame(n *html.Node) {
	setAttr(n, "style", mergeStyle(getAttr(n, "style"), frameStyle))
	if !hasAttr(n, "allowfullscreen") {
		setAttr(n, "allowfullscreen", "")
	}
	allow := getAttr(n, "allow")
	switch {
	case strings.TrimSpace(allow) == "":
		setAttr(n, "allow", frameAllow)
	case !strings.Contains(allow, "fullscreen"):
		setAttr(n, "allow", strings.TrimRight(strings.TrimSpace(allow), ";")+"; fullscreen")
	}
}

// embedBareURLs replaces video links in text node t with player frames,
// keeping the surrounding text.
func embedBareURLs(t *html.Node, color string) {
	matches := findBareVideoURLs(t.Data)
	if len(matches) == 0 || t.Parent == nil {
		return
	}
	parent := t.Parent
	text := t.Data
	pos := 0
	for _, m := range matches {
		if m.start > pos {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[pos:m.start]}, t)
		}
		parent.InsertBefore(newPlayer(m.id, m.offset), t)
		pos = m.end
	}
	if pos < len(text) {
		t.Data = text[pos:]
		return
	}
	parent.RemoveChild(t)
}

func newPlayer(id string, start int) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "iframe",
		DataAtom: atom.Iframe,
		Attr: []html.Attribute{
			{Key: "src", Val: EmbedURL(id, start)},
			{Key: "title", Val: frameTitle},
		},
	}
	styleFrame(n)
	return n
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

// setAttr replaces key in place or appends it.
func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
