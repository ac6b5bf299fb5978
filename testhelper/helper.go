package testhelper

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/beevik/etree"
)

// Field describes a bind declaration of a generated form
type Field struct {
	Name       string
	Type       string
	Calculate  string
	Constraint string
	Readonly   string
	Relevant   string
	Required   string
}

// Form describes a generated XForm
type Form struct {
	// Instance is the primary instance root element as XML. When empty it is
	// generated from the field names.
	Instance string
	// Secondary lists ids of extra (empty) instances declared after the primary one
	Secondary []string
	Fields    []Field
}

// FormXML renders form as an XForm document
func FormXML(t *testing.T, form Form) string {
	t.Helper()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)

	html := doc.CreateElement("h:html")
	html.CreateAttr("xmlns", "http://www.w3.org/2002/xforms")
	html.CreateAttr("xmlns:h", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:jr", "http://openrosa.org/javarosa")

	head := html.CreateElement("h:head")
	head.CreateElement("h:title").SetText("Test")
	model := head.CreateElement("model")

	instanceXML := form.Instance
	if instanceXML == "" {
		instanceXML = InstanceFromFields(t, form.Fields)
	}

	instance := model.CreateElement("instance")
	if strings.TrimSpace(instanceXML) != "" {
		instance.AddChild(parseElement(t, instanceXML))
	}

	for _, id := range form.Secondary {
		model.CreateElement("instance").CreateAttr("id", id)
	}

	for _, field := range form.Fields {
		bind := model.CreateElement("bind")
		bind.CreateAttr("nodeset", field.Name)
		bind.CreateAttr("type", field.Type)
		setAttr(bind, "calculate", field.Calculate)
		setAttr(bind, "constraint", field.Constraint)
		setAttr(bind, "readonly", field.Readonly)
		setAttr(bind, "relevant", field.Relevant)
		setAttr(bind, "required", field.Required)
	}

	html.CreateElement("h:body")

	out, err := doc.WriteToString()
	assert.NoError(t, err)

	return out
}

// BuildForm renders form and parses it back
func BuildForm(t *testing.T, form Form) *etree.Document {
	t.Helper()

	return ParseForm(t, FormXML(t, form))
}

// ParseForm parses an XForm document
func ParseForm(t *testing.T, xml string) *etree.Document {
	t.Helper()

	doc := etree.NewDocument()
	err := doc.ReadFromString(strings.TrimSpace(xml))
	assert.NoError(t, err)

	return doc
}

// InstanceFromFields builds an instance root whose structure mirrors the
// field nodesets, e.g. /test_form/group/field
func InstanceFromFields(t *testing.T, fields []Field) string {
	t.Helper()

	doc := etree.NewDocument()

	for _, field := range fields {
		steps := strings.Split(strings.Trim(field.Name, "/"), "/")
		if len(steps) == 0 || steps[0] == "" {
			continue
		}

		root := doc.Root()
		if root == nil {
			root = doc.CreateElement(steps[0])
		}

		current := root
		for _, step := range steps[1:] {
			next := current.SelectElement(step)
			if next == nil {
				next = current.CreateElement(step)
			}

			current = next
		}
	}

	if doc.Root() == nil {
		return ""
	}

	out, err := doc.WriteToString()
	assert.NoError(t, err)

	return out
}

func parseElement(t *testing.T, xml string) *etree.Element {
	t.Helper()

	doc := etree.NewDocument()
	err := doc.ReadFromString(strings.TrimSpace(xml))
	assert.NoError(t, err)

	return doc.Root()
}

func setAttr(elem *etree.Element, key, value string) {
	if value != "" {
		elem.CreateAttr(key, value)
	}
}
