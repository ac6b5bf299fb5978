// Package analyzer runs the upgrade rules over a set of forms and groups the
// findings into a report.
package analyzer

import (
	"context"
	"runtime"

	"github.com/jkuester/cht-upgrade-helper/report"
	"github.com/jkuester/cht-upgrade-helper/rules"
	"github.com/jkuester/cht-upgrade-helper/xform"
	"golang.org/x/sync/errgroup"
)

// IgnoreFunc reports whether a finding was reviewed and should be dropped
type IgnoreFunc func(rules.Finding) bool

// ProgressFunc is called once per analyzed form
type ProgressFunc func(formID string, findings int)

// Opt is a function option for configuring an Analyzer
type Opt func(*Analyzer)

// WithParallel sets how many forms are analyzed at once. 0 means one per CPU.
func WithParallel(n int) Opt {
	return func(a *Analyzer) {
		a.parallel = n
	}
}

// WithIgnore drops every finding for which ignore returns true
func WithIgnore(ignore IgnoreFunc) Opt {
	return func(a *Analyzer) {
		a.ignore = ignore
	}
}

// WithProgress registers a callback invoked after each form. It may be
// called from several goroutines.
func WithProgress(progress ProgressFunc) Opt {
	return func(a *Analyzer) {
		a.progress = progress
	}
}

// Analyzer applies a fixed, ordered set of rules to forms
type Analyzer struct {
	rules    []rules.Rule
	parallel int
	ignore   IgnoreFunc
	progress ProgressFunc
}

// New creates an Analyzer. Report sections follow the order of ruleSet.
func New(ruleSet []rules.Rule, opts ...Opt) *Analyzer {
	a := &Analyzer{rules: ruleSet}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Rules returns the section headers of the configured rules
func (a *Analyzer) Rules() []report.RuleInfo {
	infos := make([]report.RuleInfo, 0, len(a.rules))
	for _, rule := range a.rules {
		infos = append(infos, report.InfoOf(rule))
	}

	return infos
}

// AnalyzeForm extracts the model of a form once and runs every rule on it
func (a *Analyzer) AnalyzeForm(src xform.Source) report.FormResult {
	model := xform.Extract(src.Document)
	result := report.FormResult{Form: src.ID}

	for _, rule := range a.rules {
		for _, finding := range rule.Analyze(src.ID, model) {
			if a.ignore != nil && a.ignore(finding) {
				continue
			}

			result.Findings = append(result.Findings, finding)
		}
	}

	return result
}

// Run analyzes sources concurrently and builds the report. Forms keep the
// order of sources regardless of completion order.
func (a *Analyzer) Run(ctx context.Context, sources []xform.Source) (*report.Report, error) {
	results := make([]report.FormResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit())

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = a.AnalyzeForm(src)

			if a.progress != nil {
				a.progress(src.ID, len(results[i].Findings))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report.Build(a.Rules(), results), nil
}

func (a *Analyzer) limit() int {
	if a.parallel <= 0 {
		return runtime.NumCPU()
	}

	return a.parallel
}
