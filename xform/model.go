// Package xform normalizes a parsed XForm document into the minimal model the
// rules work on: the bind declarations and the primary instance tree.
package xform

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/jkuester/cht-upgrade-helper/xpath"
)

// ExpressionKind identifies a logic attribute of a bind
type ExpressionKind string

const (
	Calculate  ExpressionKind = "calculate"
	Constraint ExpressionKind = "constraint"
	Readonly   ExpressionKind = "readonly"
	Relevant   ExpressionKind = "relevant"
	Required   ExpressionKind = "required"
)

// ExpressionKinds lists every expression kind in canonical order
var ExpressionKinds = []ExpressionKind{Calculate, Constraint, Readonly, Relevant, Required}

// TrueExpression is the literal that makes required/relevant unconditional
const TrueExpression = "true()"

// ParseExpressionKind converts an attribute name into an ExpressionKind
func ParseExpressionKind(s string) (ExpressionKind, bool) {
	for _, kind := range ExpressionKinds {
		if string(kind) == s {
			return kind, true
		}
	}

	return "", false
}

// Source is one form handed to the analysis: a display identifier and its
// parsed document
type Source struct {
	ID       string
	Document *etree.Document
}

// Bind is a bind declaration of the form model
type Bind struct {
	Nodeset     string
	Type        string
	Expressions map[ExpressionKind]string
}

// Expression returns the expression of the given kind, if declared
func (b *Bind) Expression(kind ExpressionKind) (string, bool) {
	expr, ok := b.Expressions[kind]
	return expr, ok
}

// IsNumber reports whether the bind holds an int or decimal value
func (b *Bind) IsNumber() bool {
	return b.Type == "int" || b.Type == "decimal"
}

// IsRequired reports whether the required expression is the literal true()
func (b *Bind) IsRequired() bool {
	expr, _ := b.Expression(Required)
	return strings.TrimSpace(expr) == TrueExpression
}

// HasConditionalRelevance reports whether the bind carries a relevant
// expression other than true(), i.e. the field may become non-relevant
func (b *Bind) HasConditionalRelevance() bool {
	expr, ok := b.Expression(Relevant)
	if !ok {
		return false
	}

	expr = strings.TrimSpace(expr)

	return expr != "" && expr != TrueExpression
}

// Node is an element of the primary instance
type Node struct {
	Tag      string
	Path     string
	Text     string
	Children []*Node
}

// InstanceTree is the element structure of the primary instance
type InstanceTree struct {
	Root *Node
}

// Walk visits the nodes depth-first in document order. Returning false from
// fn skips the children of the visited node.
func (t *InstanceTree) Walk(fn func(*Node) bool) {
	if t == nil || t.Root == nil {
		return
	}

	walkNode(t.Root, fn)
}

func walkNode(node *Node, fn func(*Node) bool) {
	if !fn(node) {
		return
	}

	for _, child := range node.Children {
		walkNode(child, fn)
	}
}

// Paths returns the path of every element of the instance, the root included
func (t *InstanceTree) Paths() xpath.PathSet {
	paths := xpath.PathSet{}

	t.Walk(func(n *Node) bool {
		paths.Add(n.Path)
		return true
	})

	return paths
}

// Model is the normalized form: binds in document order plus the instance
type Model struct {
	Binds    []Bind
	Instance *InstanceTree

	index map[string]int
}

// Bind looks up the bind declared for nodeset
func (m *Model) Bind(nodeset string) (*Bind, bool) {
	i, ok := m.index[nodeset]
	if !ok {
		return nil, false
	}

	return &m.Binds[i], true
}
