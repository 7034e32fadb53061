package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
)

// GeneratedDraft is a draft plus where it was written, if anywhere.
type GeneratedDraft struct {
	*models.Draft
	Path string `json:"path,omitempty"`
}

// DraftReport renders generated test drafts. With ShowContent the text
// formats print each draft body after the summary table.
type DraftReport struct {
	Drafts      []GeneratedDraft
	Failures    []string
	ShowContent bool
}

func (r *DraftReport) RenderData() any {
	if len(r.Drafts) == 1 && len(r.Failures) == 0 {
		return r.Drafts[0]
	}
	return struct {
		Drafts   []GeneratedDraft `json:"drafts"`
		Tests    int              `json:"tests"`
		Failures []string         `json:"failures,omitempty"`
	}{r.Drafts, r.totalTests(), r.Failures}
}

func (r *DraftReport) totalTests() int {
	n := 0
	for _, d := range r.Drafts {
		n += d.TestCount
	}
	return n
}

func (r *DraftReport) table() *Table {
	rows := make([][]string, 0, len(r.Drafts))
	for _, d := range r.Drafts {
		target := d.Path
		if target == "" {
			target = d.TestFile
		}
		rows = append(rows, []string{
			d.File,
			target,
			string(d.Framework),
			string(d.Origin),
			strconv.Itoa(d.TestCount),
			syntaxStatus(d.Draft),
		})
	}
	footer := []string{fmt.Sprintf("%d files", len(r.Drafts)), "", "", "", strconv.Itoa(r.totalTests()), ""}
	headers := []string{"Source", "Test file", "Framework", "Origin", "Tests", "Syntax"}
	return NewTable("Generated tests", headers, rows, footer, nil)
}

func syntaxStatus(d *models.Draft) string {
	switch {
	case d.Syntax == nil || !d.Syntax.Checked:
		return "-"
	case d.Syntax.Valid:
		return "ok"
	default:
		return fmt.Sprintf("%d issues", len(d.Syntax.Issues))
	}
}

func (r *DraftReport) RenderText(w io.Writer, colored bool) error {
	if err := r.table().RenderText(w, colored); err != nil {
		return err
	}
	for _, d := range r.Drafts {
		for _, warning := range d.Warnings {
			msg := fmt.Sprintf("%s: %s", d.File, warning)
			if colored {
				color.New(color.FgYellow).Fprintln(w, msg)
			} else {
				fmt.Fprintln(w, "WARNING: "+msg)
			}
		}
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "failed: %s\n", f)
	}
	if !r.ShowContent {
		return nil
	}
	for _, d := range r.Drafts {
		fmt.Fprintln(w)
		title := "// " + d.TestFile
		if d.Language == parser.LangPython {
			title = "# " + d.TestFile
		}
		if colored {
			color.New(color.Bold).Fprintln(w, title)
		} else {
			fmt.Fprintln(w, title)
		}
		fmt.Fprint(w, ensureNewline(d.Content))
	}
	return nil
}

func (r *DraftReport) RenderMarkdown(w io.Writer) error {
	if err := r.table().RenderMarkdown(w); err != nil {
		return err
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "- failed: %s\n", f)
	}
	if !r.ShowContent {
		return nil
	}
	for _, d := range r.Drafts {
		fmt.Fprintf(w, "### %s\n\n```%s\n%s```\n\n", d.TestFile, d.Language, ensureNewline(d.Content))
	}
	return nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
