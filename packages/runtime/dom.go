package runtime

import (
	"strings"

	"golang.org/x/net/html"

	"bfc-go/packages/compiler/src/output"
)

// dom helpers over x/net/html nodes. Marker spellings come from the
// output package so both sides always agree.

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// walk visits n and its subtree until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// findScopeElement finds the instanceIndex-th scope element for component
// name that is not nested inside another scope below root.
func findScopeElement(root *html.Node, name string, instanceIndex int) *html.Node {
	var found *html.Node
	seen := 0
	var visit func(n *html.Node, insideScope bool)
	visit = func(n *html.Node, insideScope bool) {
		if found != nil {
			return
		}
		isScope := false
		if n.Type == html.ElementNode {
			if v, ok := attr(n, output.ScopeAttr); ok {
				isScope = true
				if !insideScope && strings.HasPrefix(v, name+"_") {
					if seen == instanceIndex {
						found = n
						return
					}
					seen++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, insideScope || isScope)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		visit(c, false)
	}
	return found
}

// findSlot locates the element marked data-bf="slot_<id>" within scope,
// including the scope element itself.
func findSlot(scope *html.Node, id int) *html.Node {
	want := output.SlotValue(id)
	var found *html.Node
	walk(scope, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := attr(n, output.SlotAttr); ok && v == want {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

func findComment(scope *html.Node, data string) *html.Node {
	var found *html.Node
	walk(scope, func(n *html.Node) bool {
		if n.Type == html.CommentNode && n.Data == data {
			found = n
			return false
		}
		return true
	})
	return found
}

// textMarkers locates the <!--bf:id--> ... <!--/bf:id--> comment pair.
func textMarkers(scope *html.Node, id int) (open, close *html.Node) {
	open = findComment(scope, commentData(output.TextOpen(id)))
	if open == nil {
		return nil, nil
	}
	want := commentData(output.TextClose(id))
	for n := open.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.CommentNode && n.Data == want {
			return open, n
		}
	}
	return nil, nil
}

func anchorComment(scope *html.Node, id int) *html.Node {
	return findComment(scope, commentData(output.Anchor(id)))
}

// commentData strips the <!-- --> wrapper, yielding what x/net/html
// stores in Node.Data.
func commentData(marker string) string {
	marker = strings.TrimPrefix(marker, "<!--")
	return strings.TrimSuffix(marker, "-->")
}

// replaceBetween replaces every node between open and close with a single
// text node.
func replaceBetween(open, close *html.Node, text string) {
	parent := open.Parent
	for open.NextSibling != nil && open.NextSibling != close {
		parent.RemoveChild(open.NextSibling)
	}
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, close)
}

// detach removes n from its parent, keeping the node reusable.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// insertAfter places n immediately after ref.
func insertAfter(ref, n *html.Node) {
	detach(n)
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(n, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(n)
	}
}

// parseFragment parses an HTML fragment in a div context.
func parseFragment(src string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil
	}
	return nodes
}

// TextContent concatenates the text nodes under n, for assertions.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// RenderNode serializes a node back to HTML.
func RenderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
