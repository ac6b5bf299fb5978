package rules

import (
	"slices"

	"github.com/jkuester/cht-upgrade-helper/xform"
	"github.com/jkuester/cht-upgrade-helper/xpath"
)

// DefaultExemptGroups are the instance groups whose defaults are context
// supplied by the app rather than user answers
var DefaultExemptGroups = []string{"inputs"}

// NonRelevantDefaultOptions tunes NonRelevantDefault
type NonRelevantDefaultOptions struct {
	// OwnBindOnly only considers the relevant expression of the field's own
	// bind. By default a conditional relevant on any enclosing group counts.
	OwnBindOnly bool
	// Kinds are the expression kinds scanned for references
	Kinds []xform.ExpressionKind
	// ExemptGroups are group names whose descendants are never flagged
	ExemptGroups []string
}

// NonRelevantDefault flags fields with a default value that may be
// non-relevant while other logic reads them. A non-relevant field is now
// always empty, whatever its default.
type NonRelevantDefault struct {
	opts NonRelevantDefaultOptions
}

var _ Rule = (*NonRelevantDefault)(nil)

func NewNonRelevantDefault(opts NonRelevantDefaultOptions) *NonRelevantDefault {
	opts.Kinds = kindsOrDefault(opts.Kinds)
	if opts.ExemptGroups == nil {
		opts.ExemptGroups = DefaultExemptGroups
	}

	return &NonRelevantDefault{opts: opts}
}

func (r *NonRelevantDefault) ID() ID { return NonRelevantDefaultID }

func (r *NonRelevantDefault) Title() string { return "Non-relevant questions with defaults to check" }

func (r *NonRelevantDefault) Analyze(formID string, model *xform.Model) []Finding {
	if model == nil || len(model.Binds) == 0 {
		return nil
	}

	var findings []Finding

	model.Instance.Walk(func(node *xform.Node) bool {
		if r.isExempt(node.Path) {
			return true
		}

		if node.Text == "" || !r.mayBeNonRelevant(model, node.Path) {
			return true
		}

		for _, ref := range referencingExpressions(model, node.Path, node.Path, r.opts.Kinds) {
			findings = append(findings, Finding{
				Rule:      NonRelevantDefaultID,
				Form:      formID,
				Question:  node.Path,
				Kind:      ref.kind,
				Reference: ref.nodeset,
				Detail:    ref.expr,
			})
		}

		return true
	})

	return findings
}

// isExempt reports whether path lies below an exempt group
func (r *NonRelevantDefault) isExempt(path string) bool {
	steps := xpath.Steps(path)
	if len(steps) == 0 {
		return false
	}

	for _, step := range steps[:len(steps)-1] {
		if slices.Contains(r.opts.ExemptGroups, step) {
			return true
		}
	}

	return false
}

// mayBeNonRelevant reports whether a conditional relevant governs path
func (r *NonRelevantDefault) mayBeNonRelevant(model *xform.Model, path string) bool {
	governing := []string{path}
	if !r.opts.OwnBindOnly {
		governing = xpath.Ancestors(path)
	}

	for _, p := range governing {
		if bind, ok := model.Bind(p); ok && bind.HasConditionalRelevance() {
			return true
		}
	}

	return false
}
