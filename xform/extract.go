package xform

import (
	"strings"

	"github.com/beevik/etree"
)

// Extract builds the Model of a parsed form. Missing head, model, bind or
// instance elements produce an empty model rather than an error.
func Extract(doc *etree.Document) *Model {
	m := &Model{
		Instance: &InstanceTree{},
		index:    make(map[string]int),
	}

	if doc == nil {
		return m
	}

	model := findModel(doc.Root())
	if model == nil {
		return m
	}

	for _, elem := range model.ChildElements() {
		if elem.Tag != "bind" {
			continue
		}

		bind, ok := extractBind(elem)
		if !ok {
			continue
		}

		// The first declaration of a nodeset wins
		if _, exists := m.index[bind.Nodeset]; exists {
			continue
		}

		m.index[bind.Nodeset] = len(m.Binds)
		m.Binds = append(m.Binds, bind)
	}

	if instance := primaryInstance(model); instance != nil {
		if root := firstChildElement(instance); root != nil {
			m.Instance.Root = buildNode(root, "")
		}
	}

	return m
}

// findModel walks html/head/model by local name
func findModel(root *etree.Element) *etree.Element {
	if root == nil || root.Tag != "html" {
		return nil
	}

	head := childElement(root, "head")
	if head == nil {
		return nil
	}

	return childElement(head, "model")
}

func extractBind(elem *etree.Element) (Bind, bool) {
	nodeset := strings.TrimSpace(attrValue(elem, "nodeset"))
	if !strings.HasPrefix(nodeset, "/") {
		return Bind{}, false
	}

	bind := Bind{
		Nodeset:     nodeset,
		Type:        localType(attrValue(elem, "type")),
		Expressions: make(map[ExpressionKind]string),
	}

	for _, kind := range ExpressionKinds {
		if expr := attrValue(elem, string(kind)); expr != "" {
			bind.Expressions[kind] = expr
		}
	}

	return bind, true
}

// localType drops a namespace prefix such as xsd:
func localType(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.LastIndex(t, ":"); i >= 0 {
		return t[i+1:]
	}

	return t
}

// primaryInstance returns the first instance element without an id
func primaryInstance(model *etree.Element) *etree.Element {
	for _, elem := range model.ChildElements() {
		if elem.Tag == "instance" && attrValue(elem, "id") == "" {
			return elem
		}
	}

	return nil
}

func buildNode(elem *etree.Element, parentPath string) *Node {
	node := &Node{
		Tag:  elem.Tag,
		Path: parentPath + "/" + elem.Tag,
		Text: directText(elem),
	}

	for _, child := range elem.ChildElements() {
		node.Children = append(node.Children, buildNode(child, node.Path))
	}

	return node
}

// directText concatenates the character data directly inside elem
func directText(elem *etree.Element) string {
	var sb strings.Builder

	for _, token := range elem.Child {
		if data, ok := token.(*etree.CharData); ok {
			sb.WriteString(data.Data)
		}
	}

	return strings.TrimSpace(sb.String())
}

func childElement(parent *etree.Element, tag string) *etree.Element {
	for _, elem := range parent.ChildElements() {
		if elem.Tag == tag {
			return elem
		}
	}

	return nil
}

func firstChildElement(parent *etree.Element) *etree.Element {
	children := parent.ChildElements()
	if len(children) == 0 {
		return nil
	}

	return children[0]
}

// attrValue returns the value of the unprefixed attribute key
func attrValue(elem *etree.Element, key string) string {
	for _, attr := range elem.Attr {
		if attr.Space == "" && attr.Key == key {
			return attr.Value
		}
	}

	return ""
}
