package report

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	upgradehelper "github.com/jkuester/cht-upgrade-helper"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format is an output format of the report
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// Formats lists the supported output formats
var Formats = []Format{FormatMarkdown, FormatHTML, FormatYAML, FormatJSON}

// ParseFormat validates a format name. An empty name selects Markdown.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatMarkdown, nil
	}

	format := Format(strings.ToLower(name))
	if !slices.Contains(Formats, format) {
		return "", fmt.Errorf("%w: '%s'", upgradehelper.ErrUnknownFormat, name)
	}

	return format, nil
}

// Render writes the report to w in the given format
func Render(w io.Writer, r *Report, format Format) error {
	var (
		out []byte
		err error
	)

	switch format {
	case FormatMarkdown, "":
		out = []byte(Markdown(r))
	case FormatHTML:
		out, err = HTML(r)
	case FormatYAML:
		out, err = yaml.Marshal(r)
	case FormatJSON:
		out, err = yaml.MarshalWithOptions(r, yaml.JSON())
	default:
		return fmt.Errorf("%w: '%s'", upgradehelper.ErrUnknownFormat, format)
	}

	if err != nil {
		return fmt.Errorf("failed to render %s report: %w", format, err)
	}

	_, err = w.Write(out)

	return err
}

// HTML renders the Markdown report as a standalone HTML page
func HTML(r *Report) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
	)

	var body bytes.Buffer

	err := md.Convert([]byte(Markdown(r)), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var page bytes.Buffer

	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", DocumentTitle)
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), nil
}
