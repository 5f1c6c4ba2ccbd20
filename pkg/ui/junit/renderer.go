// Package junit renders run reports as JUnit XML so CI systems can surface
// conflicts and per-file errors as test failures.
package junit

import (
	"fmt"
	"io"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/beevik/etree"
)

// Renderer writes JUnit XML
type Renderer struct {
	output io.Writer
}

// New creates a new JUnit renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport renders one testsuite with a testcase per item.
// Preserved and modified files are failures, per-file errors are errors,
// and missing or local files are skipped.
func (r *Renderer) RenderReport(report *types.Report) error {
	doc, suites := newDocument()

	failures, errs, skipped := 0, 0, 0
	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", "cogsync."+report.Command)
	if !report.StartedAt.IsZero() {
		suite.CreateAttr("timestamp", report.StartedAt.UTC().Format("2006-01-02T15:04:05"))
	}
	suite.CreateAttr("time", fmt.Sprintf("%.3f", report.Duration.Seconds()))

	props := suite.CreateElement("properties")
	addProperty(props, "run_id", report.RunID)
	addProperty(props, "install_root", report.InstallRoot)
	addProperty(props, "source_location", report.SourceLocation)
	addProperty(props, "dry_run", fmt.Sprintf("%t", report.DryRun))

	for _, it := range report.Items {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", it.Path)
		tc.CreateAttr("classname", "cogsync."+it.Category.String())

		switch it.Outcome {
		case types.OutcomeConflict, types.OutcomeModified:
			failures++
			f := tc.CreateElement("failure")
			f.CreateAttr("type", it.Outcome.String())
			f.CreateAttr("message", it.Message)
			f.SetText(detail(it))
		case types.OutcomeError:
			errs++
			e := tc.CreateElement("error")
			e.CreateAttr("type", it.Message)
			e.CreateAttr("message", it.Error)
		case types.OutcomeMissing, types.OutcomeLocal:
			skipped++
			s := tc.CreateElement("skipped")
			s.CreateAttr("message", it.Outcome.String())
		default:
			if it.Message != "" {
				tc.CreateElement("system-out").SetText(it.Message)
			}
		}
	}

	suite.CreateAttr("tests", fmt.Sprintf("%d", len(report.Items)))
	suite.CreateAttr("failures", fmt.Sprintf("%d", failures))
	suite.CreateAttr("errors", fmt.Sprintf("%d", errs))
	suite.CreateAttr("skipped", fmt.Sprintf("%d", skipped))

	return write(doc, r.output)
}

// RenderError renders a fatal error as a suite with a single erroring case
func (r *Renderer) RenderError(err error) error {
	doc, suites := newDocument()
	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", "cogsync")
	suite.CreateAttr("tests", "1")
	suite.CreateAttr("failures", "0")
	suite.CreateAttr("errors", "1")

	tc := suite.CreateElement("testcase")
	tc.CreateAttr("name", "run")
	tc.CreateAttr("classname", "cogsync")
	e := tc.CreateElement("error")
	e.CreateAttr("type", string(errors.GetErrorCode(err)))
	e.CreateAttr("message", err.Error())

	return write(doc, r.output)
}

// RenderMessage renders a message as an XML comment so the output stays
// a well-formed document.
func (r *Renderer) RenderMessage(msg string) error {
	doc := etree.NewDocument()
	doc.CreateComment(" " + msg + " ")
	return write(doc, r.output)
}

func newDocument() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, doc.CreateElement("testsuites")
}

func addProperty(props *etree.Element, name, value string) {
	if value == "" {
		return
	}
	p := props.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func detail(it types.Item) string {
	s := fmt.Sprintf("recorded: %s\ncurrent:  %s", it.Recorded, it.Current)
	if !it.Latest.IsZero() {
		s += fmt.Sprintf("\nlatest:   %s", it.Latest)
	}
	if it.Template != "" {
		s += "\ntemplate: " + it.Template
	}
	return s
}

func write(doc *etree.Document, w io.Writer) error {
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
