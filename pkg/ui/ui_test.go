// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test format parsing and report rendering in every format

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/arthur-debert/cogsync/pkg/ui"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *types.Report {
	r := &types.Report{
		RunID:          "6f1c1d2e-0000-4000-8000-000000000001",
		Command:        "update",
		InstallRoot:    "/work/project",
		SourceLocation: "/work/template",
		StartedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
	}
	r.Append(
		types.Item{Path: "hooks/a.sh", Category: types.CategoryHook, Outcome: types.OutcomeUpdated},
		types.Item{Path: "agents/b.md", Category: types.CategoryAgent, Outcome: types.OutcomeConflict,
			Message: "installed and template both changed; compare manually"},
		types.Item{Path: "agents/c.md", Category: types.CategoryAgent, Outcome: types.OutcomeUnchanged},
		types.Item{Path: "skills/x/SKILL.md", Category: types.CategorySkill, Outcome: types.OutcomeAdded,
			Message: "added from template"},
		types.Item{Path: "hooks/gone.sh", Category: types.CategoryHook, Outcome: types.OutcomeMissing},
		types.Item{Path: "hooks/bad.sh", Category: types.CategoryHook, Outcome: types.OutcomeError,
			Message: "FILE_COPY", Error: "permission denied"},
	)
	return r
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   ui.Format
		expected string
	}{
		{ui.FormatAuto, "auto"},
		{ui.FormatTerminal, "term"},
		{ui.FormatText, "text"},
		{ui.FormatJSON, "json"},
		{ui.FormatYAML, "yaml"},
		{ui.FormatJUnit, "junit"},
		{ui.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
	}{
		{"", ui.FormatAuto},
		{"auto", ui.FormatAuto},
		{"term", ui.FormatTerminal},
		{"TERMINAL", ui.FormatTerminal},
		{"plain", ui.FormatText},
		{"json", ui.FormatJSON},
		{"yml", ui.FormatYAML},
		{"junit", ui.FormatJUnit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ui.ParseFormat("html")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewRenderer_AutoOnBufferIsText(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatAuto, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderMessage("hello"))
	assert.Equal(t, "hello\n", buf.String())

	_, err = ui.NewRenderer(ui.Format(42), &buf)
	assert.Error(t, err)
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "update /work/project\n")
	assert.Contains(t, out, "updated    hooks/a.sh\n")
	assert.Contains(t, out, "preserved  agents/b.md  installed and template both changed; compare manually\n")
	assert.Contains(t, out, "error      hooks/bad.sh  permission denied\n")
	assert.NotContains(t, out, "agents/c.md", "unchanged files are only counted")
	assert.Contains(t, out, "1 updated, 1 added, 1 unchanged, 1 preserved, 1 missing, 1 errors\n")
}

func TestTextRenderer_DryRunAndError(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	report := &types.Report{Command: "status", InstallRoot: "/p", DryRun: true}
	require.NoError(t, r.RenderReport(report))
	assert.Contains(t, buf.String(), "status /p (dry run)")

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrLocked, "installation is locked")))
	assert.Equal(t, "Error (LOCKED): [LOCKED] installation is locked\n", buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "update", decoded["command"])
	counts := decoded["counts"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["preserved"])
	assert.EqualValues(t, 0, counts["local"])
	items := decoded["items"].([]interface{})
	require.Len(t, items, 6)
	first := items[1].(map[string]interface{})
	assert.Equal(t, "preserved", first["outcome"])
	assert.Equal(t, "agent", first["category"])
}

func TestJSONRenderer_EmptyItemsIsArray(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(&types.Report{Command: "update"}))
	assert.Contains(t, buf.String(), `"items": []`)
}

func TestJSONRenderer_Error(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	cerr := errors.New(errors.ErrManifestParse, "manifest is corrupt").WithDetail("path", "/p/version.json")
	require.NoError(t, r.RenderError(cerr))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "MANIFEST_PARSE", decoded["code"])
	assert.Equal(t, "/p/version.json", decoded["details"].(map[string]interface{})["path"])
}

func TestYAMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatYAML, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(sampleReport()))

	var decoded struct {
		Command  string       `yaml:"command"`
		Duration string       `yaml:"duration"`
		Counts   types.Counts `yaml:"counts"`
		Items    []struct {
			Path    string `yaml:"path"`
			Outcome string `yaml:"outcome"`
		} `yaml:"items"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "update", decoded.Command)
	assert.Equal(t, "1.5s", decoded.Duration)
	assert.Equal(t, 1, decoded.Counts.Added)
	require.Len(t, decoded.Items, 6)
	assert.Equal(t, "missing", decoded.Items[4].Outcome)
}

func TestJUnitRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJUnit, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(sampleReport()))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	suite := doc.FindElement("/testsuites/testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "cogsync.update", suite.SelectAttrValue("name", ""))
	assert.Equal(t, "6", suite.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("errors", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("skipped", ""))
	assert.Equal(t, "1.500", suite.SelectAttrValue("time", ""))

	failure := doc.FindElement("//testcase[@name='agents/b.md']/failure")
	require.NotNil(t, failure)
	assert.Equal(t, "preserved", failure.SelectAttrValue("type", ""))

	errEl := doc.FindElement("//testcase[@name='hooks/bad.sh']/error")
	require.NotNil(t, errEl)
	assert.Equal(t, "permission denied", errEl.SelectAttrValue("message", ""))

	assert.NotNil(t, doc.FindElement("//property[@name='run_id']"))
}

func TestJUnitRenderer_Error(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJUnit, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrTemplateRoot, "template root missing")))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	errEl := doc.FindElement("//testcase/error")
	require.NotNil(t, errEl)
	assert.Equal(t, "TEMPLATE_ROOT", errEl.SelectAttrValue("type", ""))
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatTerminal, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderReport(sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "cogsync update")
	assert.Contains(t, out, "/work/project")
	assert.Contains(t, out, "hooks/a.sh")
	assert.Contains(t, out, "agents/b.md")
	assert.NotContains(t, out, "agents/c.md")
	assert.Contains(t, out, "1 preserved")
	assert.Contains(t, out, "3 file(s) need attention")
}
