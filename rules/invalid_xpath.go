package rules

import (
	"github.com/jkuester/cht-upgrade-helper/xform"
	"github.com/jkuester/cht-upgrade-helper/xpath"
)

// InvalidXPath flags explicit paths in calculate and relevant expressions
// that do not point to an element of the primary instance. Such paths never
// raise an error at runtime, they silently evaluate to an empty value.
type InvalidXPath struct{}

var _ Rule = (*InvalidXPath)(nil)

var invalidXPathKinds = []xform.ExpressionKind{xform.Calculate, xform.Relevant}

func NewInvalidXPath() *InvalidXPath {
	return &InvalidXPath{}
}

func (r *InvalidXPath) ID() ID { return InvalidXPathID }

func (r *InvalidXPath) Title() string { return "Fields with xPath paths to check" }

func (r *InvalidXPath) Analyze(formID string, model *xform.Model) []Finding {
	if model == nil || len(model.Binds) == 0 {
		return nil
	}

	known := model.Instance.Paths()

	var findings []Finding

	for _, bind := range model.Binds {
		for _, kind := range invalidXPathKinds {
			expr, ok := bind.Expression(kind)
			if !ok {
				continue
			}

			seen := make(map[string]bool)

			for _, fragment := range xpath.ExtractPaths(expr) {
				if seen[fragment] {
					continue
				}

				seen[fragment] = true

				if xpath.Exists(xpath.Resolve(bind.Nodeset, fragment), known) {
					continue
				}

				findings = append(findings, Finding{
					Rule:     InvalidXPathID,
					Form:     formID,
					Question: bind.Nodeset,
					Kind:     kind,
					Detail:   fragment,
				})
			}
		}
	}

	return findings
}
