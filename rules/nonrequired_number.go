package rules

import (
	"github.com/jkuester/cht-upgrade-helper/xform"
	"github.com/jkuester/cht-upgrade-helper/xpath"
)

// NonRequiredNumberOptions tunes NonRequiredNumber
type NonRequiredNumberOptions struct {
	// MatchLocalName matches references by the last path step instead of the
	// full nodeset. It finds references written with relative paths at the
	// cost of false positives on same-named fields of other groups.
	MatchLocalName bool
	// Kinds are the expression kinds scanned for references
	Kinds []xform.ExpressionKind
}

// NonRequiredNumber flags optional int/decimal questions used in other
// expressions without a coalesce() guard. An unanswered number now evaluates
// to NaN instead of 0.
type NonRequiredNumber struct {
	opts NonRequiredNumberOptions
}

var _ Rule = (*NonRequiredNumber)(nil)

func NewNonRequiredNumber(opts NonRequiredNumberOptions) *NonRequiredNumber {
	opts.Kinds = kindsOrDefault(opts.Kinds)
	return &NonRequiredNumber{opts: opts}
}

func (r *NonRequiredNumber) ID() ID { return NonRequiredNumberID }

func (r *NonRequiredNumber) Title() string { return "Number questions to check" }

func (r *NonRequiredNumber) Analyze(formID string, model *xform.Model) []Finding {
	if model == nil {
		return nil
	}

	var findings []Finding

	for _, candidate := range model.Binds {
		if !candidate.IsNumber() || candidate.IsRequired() {
			continue
		}

		key := candidate.Nodeset
		if r.opts.MatchLocalName {
			key = xpath.LocalName(key)
		}

		for _, ref := range referencingExpressions(model, candidate.Nodeset, key, r.opts.Kinds) {
			findings = append(findings, Finding{
				Rule:      NonRequiredNumberID,
				Form:      formID,
				Question:  candidate.Nodeset,
				Kind:      ref.kind,
				Reference: ref.nodeset,
				Detail:    ref.expr,
			})
		}
	}

	return findings
}
