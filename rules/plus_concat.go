package rules

import (
	"regexp"

	"github.com/jkuester/cht-upgrade-helper/xform"
)

// quotePlusQuote is the closing quote of a string literal, a + and the opening
// quote of the next literal
var quotePlusQuote = regexp.MustCompile(`['"]\s*\+\s*['"]`)

// PlusConcat flags string literals joined with + instead of concat()
type PlusConcat struct{}

var _ Rule = (*PlusConcat)(nil)

func NewPlusConcat() *PlusConcat {
	return &PlusConcat{}
}

func (r *PlusConcat) ID() ID { return PlusConcatID }

func (r *PlusConcat) Title() string { return "String literal concatenations to check" }

func (r *PlusConcat) Analyze(formID string, model *xform.Model) []Finding {
	if model == nil {
		return nil
	}

	var findings []Finding

	for _, bind := range model.Binds {
		for _, kind := range xform.ExpressionKinds {
			expr, ok := bind.Expression(kind)
			if !ok || !HasPlusConcat(expr) {
				continue
			}

			findings = append(findings, Finding{
				Rule:     PlusConcatID,
				Form:     formID,
				Question: bind.Nodeset,
				Kind:     kind,
				Detail:   expr,
			})
		}
	}

	return findings
}

// HasPlusConcat reports whether expr joins two string literals with +
func HasPlusConcat(expr string) bool {
	return quotePlusQuote.MatchString(expr)
}
