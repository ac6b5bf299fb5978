package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jkuester/cht-upgrade-helper/rules"
	"github.com/jkuester/cht-upgrade-helper/xform"
)

// DocumentTitle is the top-level heading of a rendered report
const DocumentTitle = "Upgrade Helper Results"

const coalesceDocs = "https://docs.getodk.org/form-operators-functions/#coalesce"

// explanations is the fixed prose printed under each rule heading
var explanations = map[rules.ID][]string{
	rules.InvalidXPathID: {
		"Explicit [xPath paths](https://docs.getodk.org/form-logic/#advanced-xpath-paths) (either absolute or relative) " +
			"do not cause an error when the element they identify does not exist in the form, so invalid paths are easy to miss.",
		"The fields below use paths in their `calculate` or `relevant` logic that could not be found in the primary instance. " +
			"Review each path and the logic around it.",
	},
	rules.NonRequiredNumberID: {
		"The value used for unanswered number questions in calculations has changed. " +
			"Previously `0` was given to the logic, but the platform now follows the " +
			"[ODK spec](https://docs.getodk.org/form-logic/#empty-values) and an unanswered number question evaluates to `NaN`.",
		"Logic that expects `0` can break. Every expression using a non-required number question is listed below.",
		"One fix is to wrap the value with the [coalesce](" + coalesceDocs + ") function, " +
			"so `${potentially_empty_value} > 0` becomes `coalesce(${potentially_empty_value}, 0) > 0`.",
	},
	rules.NonRelevantDefaultID: {
		"The value of a non-relevant field is now always empty, regardless of its default value. " +
			"Previously a question that was never relevant still provided its default to calculations and other logic.",
		"The questions below have a default value, may be non-relevant and are used in other form logic.",
		"One fix is to add a `calculate` field that the logic references instead of the question, using the " +
			"[coalesce](" + coalesceDocs + ") function: " +
			"`coalesce(${non_relevant_question}, *original default for non_relevant_question*)`.",
	},
	rules.PlusConcatID: {
		"Older versions of Enketo allowed joining strings with the `+` operator even though it was never part of the ODK specification. " +
			"Later versions evaluate these expressions to `NaN`.",
		"Use the [`concat` function](https://docs.getodk.org/form-operators-functions/#concat) instead.",
	},
}

// Explanation returns the prose printed under the heading of a rule
func Explanation(id rules.ID) []string {
	return explanations[id]
}

// WriteMarkdown renders the report as Markdown
func WriteMarkdown(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, Markdown(r))
	return err
}

// Markdown renders the report as a Markdown document
func Markdown(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", DocumentTitle)

	if r.IsEmpty() {
		sb.WriteString("No upgrade issues were found.\n")
		return sb.String()
	}

	for _, section := range r.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", section.Rule.Title)

		for _, paragraph := range Explanation(section.Rule.ID) {
			sb.WriteString(paragraph)
			sb.WriteString("\n\n")
		}

		for _, form := range section.Forms {
			fmt.Fprintf(&sb, "### %s\n\n", form.Form)

			for _, question := range form.Questions {
				fmt.Fprintf(&sb, "#### %s\n\n", question.Question)
				writeFindings(&sb, question.Findings)
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// writeFindings lists the findings of a question grouped by expression kind
func writeFindings(sb *strings.Builder, findings []rules.Finding) {
	var kinds []xform.ExpressionKind

	byKind := make(map[xform.ExpressionKind][]rules.Finding)
	for _, f := range findings {
		if _, ok := byKind[f.Kind]; !ok {
			kinds = append(kinds, f.Kind)
		}

		byKind[f.Kind] = append(byKind[f.Kind], f)
	}

	for _, kind := range kinds {
		indent := ""
		if kind != "" {
			fmt.Fprintf(sb, "- %s:\n", kind)
			indent = "  "
		}

		for _, f := range byKind[kind] {
			writeFinding(sb, indent, f)
		}
	}
}

func writeFinding(sb *strings.Builder, indent string, f rules.Finding) {
	if f.Reference == "" {
		fmt.Fprintf(sb, "%s- ", indent)
		writeCodeBlock(sb, indent+"  ", f.Detail, false)

		return
	}

	fmt.Fprintf(sb, "%s- %s\n", indent, f.Reference)

	if f.Detail == "" {
		return
	}

	writeCodeBlock(sb, indent+"  ", f.Detail, true)
}

// writeCodeBlock writes detail as a fenced block whose lines are prefixed
// with indent. The opening fence is left unindented when it continues a list
// item marker.
func writeCodeBlock(sb *strings.Builder, indent, detail string, indentOpening bool) {
	fence := codeFence(detail)

	if indentOpening {
		sb.WriteString(indent)
	}

	sb.WriteString(fence + "\n")

	body := strings.ReplaceAll(strings.TrimSpace(detail), "\n", "\n"+indent)
	fmt.Fprintf(sb, "%s%s\n", indent, body)
	fmt.Fprintf(sb, "%s%s\n", indent, fence)
}

// codeFence returns a backtick fence longer than any backtick run in detail
func codeFence(detail string) string {
	longest, run := 0, 0

	for _, r := range detail {
		if r != '`' {
			run = 0
			continue
		}

		run++
		longest = max(longest, run)
	}

	return strings.Repeat("`", max(3, longest+1))
}
