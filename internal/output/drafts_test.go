package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
)

func sampleDraft() *models.Draft {
	return &models.Draft{
		File:      "cart.py",
		TestFile:  "test_cart.py",
		Language:  parser.LangPython,
		Framework: models.FrameworkPytest,
		Origin:    models.OriginTemplate,
		Content:   "import pytest\n\ndef test_add():\n    assert add(2, 3) == 5",
		TestCount: 1,
		Syntax:    &parser.SyntaxReport{Checked: true, Valid: true},
	}
}

func TestDraftReport_RenderText(t *testing.T) {
	r := &DraftReport{
		Drafts:      []GeneratedDraft{{Draft: sampleDraft(), Path: "tests/test_cart.py"}},
		ShowContent: true,
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderText(&buf, false))
	out := buf.String()

	for _, want := range []string{"Generated tests", "cart.py", "tests/test_cart.py", "pytest", "template", "ok", "# test_cart.py\n", "assert add(2, 3) == 5\n"} {
		assert.Contains(t, out, want)
	}
}

func TestDraftReport_WarningsAndFailures(t *testing.T) {
	d := &models.Draft{File: "Repo.java", TestFile: "RepoTest.java", Warnings: []string{"Java interface detected: Repo"}}
	r := &DraftReport{Drafts: []GeneratedDraft{{Draft: d}}, Failures: []string{"x.py: denied"}}

	var buf bytes.Buffer
	require.NoError(t, r.RenderText(&buf, false))
	out := buf.String()

	assert.Contains(t, out, "WARNING: Repo.java: Java interface detected: Repo")
	assert.Contains(t, out, "failed: x.py: denied")
	assert.NotContains(t, out, "// RepoTest.java", "content hidden by default")
}

func TestDraftReport_RenderMarkdown(t *testing.T) {
	r := &DraftReport{Drafts: []GeneratedDraft{{Draft: sampleDraft()}}, ShowContent: true}

	var buf bytes.Buffer
	require.NoError(t, r.RenderMarkdown(&buf))
	out := buf.String()

	assert.Contains(t, out, "| cart.py | test_cart.py | pytest | template | 1 | ok |")
	assert.Contains(t, out, "### test_cart.py\n\n```python\nimport pytest")
	assert.True(t, strings.HasSuffix(out, "== 5\n```\n\n"))
}

func TestDraftReport_RenderData(t *testing.T) {
	single := &DraftReport{Drafts: []GeneratedDraft{{Draft: sampleDraft(), Path: "out/test_cart.py"}}}
	raw, err := json.Marshal(single.RenderData())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"test_file":"test_cart.py"`)
	assert.Contains(t, string(raw), `"path":"out/test_cart.py"`)

	batch := &DraftReport{Drafts: []GeneratedDraft{{Draft: sampleDraft()}, {Draft: sampleDraft()}}}
	raw, err = json.Marshal(batch.RenderData())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tests":2`)
}

func TestSyntaxStatus(t *testing.T) {
	assert.Equal(t, "-", syntaxStatus(&models.Draft{}))
	assert.Equal(t, "-", syntaxStatus(&models.Draft{Syntax: &parser.SyntaxReport{}}))
	assert.Equal(t, "ok", syntaxStatus(sampleDraft()))
	bad := &models.Draft{Syntax: &parser.SyntaxReport{Checked: true, Issues: make([]parser.SyntaxIssue, 2)}}
	assert.Equal(t, "2 issues", syntaxStatus(bad))
}
