package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/jkuester/cht-upgrade-helper/rules"
	"github.com/jkuester/cht-upgrade-helper/xform"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// headings parses md and returns its headings as "<level> <text>"
func headings(t *testing.T, md string) []string {
	t.Helper()

	source := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var result []string

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder

		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if txt, ok := c.(*ast.Text); ok {
				sb.Write(txt.Segment.Value(source))
			}
		}

		result = append(result, fmt.Sprintf("%d %s", heading.Level, sb.String()))

		return ast.WalkSkipChildren, nil
	})
	assert.NoError(t, err)

	return result
}

func TestMarkdownStructure(t *testing.T) {
	md := Markdown(Build(ruleInfos, sampleResults()))

	assert.Equal(t, []string{
		"1 Upgrade Helper Results",
		"2 Fields with xPath paths to check",
		"3 ./forms/contact/c.xml",
		"4 /c/x",
		"2 Number questions to check",
		"3 ./forms/app/a.xml",
		"4 /a/n",
		"4 /a/m",
		"3 ./forms/contact/c.xml",
		"4 /c/n",
		"2 String literal concatenations to check",
		"3 ./forms/app/a.xml",
		"4 /a/label",
	}, headings(t, md))
}

func TestMarkdownQuestionBlock(t *testing.T) {
	r := Build(ruleInfos, []FormResult{{
		Form: "./forms/app/a.xml",
		Findings: []rules.Finding{
			{Rule: rules.NonRequiredNumberID, Question: "/a/n", Kind: xform.Calculate, Reference: "/a/c", Detail: " /a/n + 1 "},
			{Rule: rules.NonRequiredNumberID, Question: "/a/n", Kind: xform.Relevant, Reference: "/a/r", Detail: "/a/n > 0"},
			{Rule: rules.InvalidXPathID, Question: "/a/x", Kind: xform.Calculate, Detail: "../missing"},
		},
	}})

	md := Markdown(r)

	assert.Contains(t, md, "#### /a/n\n\n"+
		"- calculate:\n"+
		"  - /a/c\n"+
		"    ```\n"+
		"    /a/n + 1\n"+
		"    ```\n"+
		"- relevant:\n"+
		"  - /a/r\n"+
		"    ```\n"+
		"    /a/n > 0\n"+
		"    ```\n")
	assert.Contains(t, md, "#### /a/x\n\n- calculate:\n  - ```\n    ../missing\n    ```\n")
	assert.Contains(t, md, Explanation(rules.NonRequiredNumberID)[0])
}

// codeBlocks parses md and returns the content of its fenced code blocks
func codeBlocks(t *testing.T, md string) []string {
	t.Helper()

	source := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var result []string

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder

		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			sb.Write(segment.Value(source))
		}

		result = append(result, strings.TrimRight(sb.String(), "\n"))

		return ast.WalkSkipChildren, nil
	})
	assert.NoError(t, err)

	return result
}

func TestMarkdownDetailWithoutReference(t *testing.T) {
	detail := "concat(\"`a`\" +\n'```b')"

	r := Build(ruleInfos, []FormResult{{
		Form: "./forms/app/a.xml",
		Findings: []rules.Finding{
			{Rule: rules.PlusConcatID, Question: "/a/label", Kind: xform.Calculate, Detail: detail},
		},
	}})

	md := Markdown(r)

	assert.Contains(t, md, "  - ````\n")
	assert.Equal(t, []string{detail}, codeBlocks(t, md))
	assert.Equal(t, []string{
		"1 Upgrade Helper Results",
		"2 String literal concatenations to check",
		"3 ./forms/app/a.xml",
		"4 /a/label",
	}, headings(t, md))
}

func TestCodeFence(t *testing.T) {
	assert.Equal(t, "```", codeFence("a + b"))
	assert.Equal(t, "```", codeFence("`a`"))
	assert.Equal(t, "````", codeFence("a ``` b"))
}

func TestMarkdownEmptyReport(t *testing.T) {
	var buf bytes.Buffer

	err := WriteMarkdown(&buf, Build(ruleInfos, nil))
	assert.NoError(t, err)
	assert.Equal(t, "# Upgrade Helper Results\n\nNo upgrade issues were found.\n", buf.String())
}

func TestEveryRuleHasExplanation(t *testing.T) {
	for _, id := range rules.IDs {
		assert.NotEqual(t, 0, len(Explanation(id)), "missing explanation for %s", id)
	}
}
