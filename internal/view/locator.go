package view

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Markup contract consumed from the storefront templates.
const (
	attrDataJS     = "data-js"
	attrMiniCartID = "data-mini-cart-id"
	attrCartItemID = "data-cart_item_id"
	attrDisabled   = "disabled"

	jsCart          = "bc-cart"
	jsMiniCart      = "bc-mini-cart"
	jsQuantity      = "bc-cart-item__quantity"
	jsRemove        = "remove-cart-item"
	jsCheckout      = "proceed-to-checkout"
	jsErrorMessage  = "bc-cart-error-message"
	jsMenuItemCount = "bc-cart-menu-item__count"

	classRemoveButton = "bc-cart-item__remove-button"
	classItemTotal    = "bc-cart-item-total-price"
	classSubtotal     = "bc-cart-subtotal__amount"
	classTax          = "bc-cart-tax__amount"
	classError        = "bc-cart-error"
	classFooter       = "bc-cart-footer"
	classBody         = "bc-cart-body"
	classEmpty        = "bc-cart__empty"
	classUpdating     = "bc-updating-cart"
	classMessage      = "message-active"
	classMenuFull     = "full"
)

func isElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := getAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(classes(n), class)
}

func addClass(n *html.Node, class string) {
	cs := classes(n)
	if slices.Contains(cs, class) {
		return
	}
	setAttr(n, "class", strings.Join(append(cs, class), " "))
}

func removeClass(n *html.Node, class string) {
	cs := classes(n)
	if !slices.Contains(cs, class) {
		return
	}
	cs = slices.DeleteFunc(cs, func(c string) bool { return c == class })
	if len(cs) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(cs, " "))
}

// findAll returns every element under root (root included) matching pred,
// in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isElement(n) && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if all := findAll(root, pred); len(all) > 0 {
		return all[0]
	}
	return nil
}

// closest walks from n up through its ancestors, n included.
func closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if isElement(cur) && pred(cur) {
			return cur
		}
	}
	return nil
}

func byDataJS(value string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, attrDataJS) == value }
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return hasClass(n, class) }
}

// setText replaces the children of n with a single text node.
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return b.String()
}

func detach(n *html.Node) bool {
	if n == nil || n.Parent == nil {
		return false
	}
	n.Parent.RemoveChild(n)
	return true
}
