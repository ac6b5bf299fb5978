// Package rules holds the independent checks run against every form model.
// Each rule is pure: it reads a model and returns findings, nothing else.
package rules

import (
	"github.com/jkuester/cht-upgrade-helper/refmatch"
	"github.com/jkuester/cht-upgrade-helper/xform"
)

// ID identifies a rule in configuration and reports
type ID string

const (
	InvalidXPathID       ID = "invalid-xpath"
	NonRequiredNumberID  ID = "non-required-number"
	NonRelevantDefaultID ID = "non-relevant-default"
	PlusConcatID         ID = "plus-concat"
)

// IDs lists every rule in report order
var IDs = []ID{InvalidXPathID, NonRequiredNumberID, NonRelevantDefaultID, PlusConcatID}

// Finding is a single flagged question of a form
type Finding struct {
	Rule     ID                   `yaml:"rule"`
	Form     string               `yaml:"form"`
	Question string               `yaml:"question"`
	Kind     xform.ExpressionKind `yaml:"kind,omitempty"`
	// Reference is the nodeset of the bind whose expression uses Question
	Reference string `yaml:"reference,omitempty"`
	// Detail is the offending expression or unresolved path fragment
	Detail string `yaml:"detail,omitempty"`
}

// Rule analyzes a form model
type Rule interface {
	ID() ID
	Title() string
	Analyze(formID string, model *xform.Model) []Finding
}

// Defaults returns every rule with its default options, in report order
func Defaults() []Rule {
	return []Rule{
		NewInvalidXPath(),
		NewNonRequiredNumber(NonRequiredNumberOptions{}),
		NewNonRelevantDefault(NonRelevantDefaultOptions{}),
		NewPlusConcat(),
	}
}

// DefaultKinds are the expression kinds scanned for references unless a rule
// is configured otherwise
var DefaultKinds = []xform.ExpressionKind{xform.Calculate, xform.Relevant}

func kindsOrDefault(kinds []xform.ExpressionKind) []xform.ExpressionKind {
	if len(kinds) == 0 {
		return DefaultKinds
	}

	return kinds
}

// referencingExpressions returns, per kind, the binds other than skip whose
// expression of that kind live-references key
func referencingExpressions(model *xform.Model, skip, key string, kinds []xform.ExpressionKind) []reference {
	var refs []reference

	for _, kind := range kinds {
		for i := range model.Binds {
			bind := &model.Binds[i]
			if bind.Nodeset == skip {
				continue
			}

			expr, ok := bind.Expression(kind)
			if !ok || !refmatch.IsLiveReference(expr, key) {
				continue
			}

			refs = append(refs, reference{kind: kind, nodeset: bind.Nodeset, expr: expr})
		}
	}

	return refs
}

type reference struct {
	kind    xform.ExpressionKind
	nodeset string
	expr    string
}
