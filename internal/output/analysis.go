package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/probe/pkg/models"
)

// maxDetail bounds the detail column of findings tables.
const maxDetail = 60

// AnalysisReport renders the results of one or more analyses.
type AnalysisReport struct {
	Analyses []*models.Analysis
	Failures []string // "file: error" for files that produced no result
}

// NewAnalysisReport wraps analyses for output. Nil entries are skipped.
func NewAnalysisReport(analyses []*models.Analysis, failures ...string) *AnalysisReport {
	kept := make([]*models.Analysis, 0, len(analyses))
	for _, a := range analyses {
		if a != nil {
			kept = append(kept, a)
		}
	}
	return &AnalysisReport{Analyses: kept, Failures: failures}
}

// Summary aggregates a batch of analyses.
type Summary struct {
	Files      int                     `json:"files"`
	Supported  int                     `json:"supported"`
	Findings   int                     `json:"findings"`
	Critical   int                     `json:"critical"`
	High       int                     `json:"high"`
	MeanScores map[models.Category]int `json:"mean_scores"`
	Failures   []string                `json:"failures,omitempty"`
}

// Summarize computes mean category scores over the supported analyses.
func Summarize(analyses []*models.Analysis) Summary {
	s := Summary{Files: len(analyses), MeanScores: make(map[models.Category]int)}
	scores := make(map[models.Category][]float64)
	for _, a := range analyses {
		for _, f := range a.Findings() {
			s.Findings++
			switch f.Severity {
			case models.SeverityCritical:
				s.Critical++
			case models.SeverityHigh:
				s.High++
			}
		}
		if !a.Supported {
			continue
		}
		s.Supported++
		for _, c := range models.Categories() {
			scores[c] = append(scores[c], float64(a.Score(c)))
		}
	}
	for c, xs := range scores {
		s.MeanScores[c] = int(stat.Mean(xs, nil) + 0.5)
	}
	return s
}

type analysisData struct {
	Analyses []*models.Analysis `json:"analyses"`
	Summary  Summary            `json:"summary"`
}

// RenderData returns the single analysis unchanged, or the batch with its
// summary.
func (r *AnalysisReport) RenderData() any {
	if len(r.Analyses) == 1 && len(r.Failures) == 0 {
		return r.Analyses[0]
	}
	s := Summarize(r.Analyses)
	s.Failures = r.Failures
	return analysisData{Analyses: r.Analyses, Summary: s}
}

func (r *AnalysisReport) RenderText(w io.Writer, colored bool) error {
	for i, a := range r.Analyses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := r.fileReport(a, colored).RenderText(w, colored); err != nil {
			return err
		}
	}
	if len(r.Analyses) > 1 || len(r.Failures) > 0 {
		fmt.Fprintln(w)
		if err := r.summaryTable(colored).RenderText(w, colored); err != nil {
			return err
		}
	}
	for _, f := range r.Failures {
		if colored {
			color.New(color.FgRed).Fprintf(w, "failed: %s\n", f)
		} else {
			fmt.Fprintf(w, "failed: %s\n", f)
		}
	}
	return nil
}

func (r *AnalysisReport) RenderMarkdown(w io.Writer) error {
	for _, a := range r.Analyses {
		if err := r.fileReport(a, false).RenderMarkdown(w); err != nil {
			return err
		}
	}
	if len(r.Analyses) > 1 || len(r.Failures) > 0 {
		if err := r.summaryTable(false).RenderMarkdown(w); err != nil {
			return err
		}
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "- failed: %s\n", f)
	}
	return nil
}

func (r *AnalysisReport) fileReport(a *models.Analysis, colored bool) *Report {
	title := fmt.Sprintf("%s (%s)", a.File, a.Language)
	if !a.Supported {
		return &Report{
			Title:    title,
			Sections: []Renderable{&Section{Content: "Language not supported; no analysis performed."}},
		}
	}

	var sections []Renderable
	if a.IsInterface {
		sections = append(sections, &Section{
			Content: fmt.Sprintf("Java interface %s: contracts only. Analyze %sImpl.java for behaviour.", a.InterfaceName, a.InterfaceName),
		})
	}
	sections = append(sections, scoresTable(a, colored))
	if t := findingsTable(a, colored); t != nil {
		sections = append(sections, t)
	}
	if s := adviceSection(a); s != nil {
		sections = append(sections, s)
	}
	return &Report{Title: title, Sections: sections}
}

func scoresTable(a *models.Analysis, colored bool) *Table {
	rows := [][]string{
		{"Bugs", score(a.Bugs.Score, colored), fmt.Sprintf("%d issues", a.Bugs.TotalIssues)},
		{"Complexity", score(a.Complexity.Score, colored), fmt.Sprintf("%s, cyclomatic %.1f, %d LOC", a.Complexity.Level, a.Complexity.Cyclomatic, a.Complexity.LinesOfCode)},
		{"Security", score(a.Security.Score, colored), fmt.Sprintf("risk %s, %d vulnerabilities", a.Security.RiskLevel, len(a.Security.Vulnerabilities))},
		{"Coverage", score(a.Coverage.Score, colored), fmt.Sprintf("~%d%% with %d tests", a.Coverage.EstimatedCoverage, a.Coverage.TestsGenerated)},
		{"Performance", score(a.Performance.Score, colored), fmt.Sprintf("%s, %s", a.Performance.Level, a.Performance.Complexity)},
		{"Smells", score(a.Smells.Score, colored), fmt.Sprintf("%s, %d smells", a.Smells.Level, a.Smells.SmellsCount)},
	}
	footer := []string{
		"",
		"",
		fmt.Sprintf("%d functions, %d classes", a.FunctionsCount, a.ClassesCount),
	}
	return NewTable("Scores", []string{"Category", "Score", "Detail"}, rows, footer, nil)
}

func findingsTable(a *models.Analysis, colored bool) *Table {
	findings := a.Findings()
	if len(findings) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		sev := string(f.Severity)
		if colored {
			sev = SeverityColor(sev, sev)
		}
		line := ""
		if f.Line > 0 {
			line = strconv.Itoa(f.Line)
		}
		detail := f.Detail
		if detail == "" {
			detail = f.Location
		}
		rows = append(rows, []string{line, sev, f.Title, models.Excerpt(detail, maxDetail)})
	}
	return NewTable("Findings", []string{"Line", "Severity", "Type", "Detail"}, rows, nil, nil)
}

func adviceSection(a *models.Analysis) *Section {
	var subs []Section
	if len(a.Bugs.Suggestions) > 0 {
		subs = append(subs, Section{Title: "Suggestions", Content: bullets(a.Bugs.Suggestions)})
	}
	if len(a.Security.Recommendations) > 0 {
		subs = append(subs, Section{Title: "Security recommendations", Content: bullets(a.Security.Recommendations)})
	}
	if a.Coverage.Verdict != "" {
		subs = append(subs, Section{Title: "Coverage", Content: a.Coverage.Verdict})
	}
	if a.Smells.Verdict != "" {
		subs = append(subs, Section{Title: "Code quality", Content: a.Smells.Verdict})
	}
	if len(subs) == 0 {
		return nil
	}
	return &Section{Title: "Advice", Sections: subs}
}

func (r *AnalysisReport) summaryTable(colored bool) *Table {
	rows := make([][]string, 0, len(r.Analyses))
	for _, a := range r.Analyses {
		row := []string{a.File, string(a.Language)}
		for _, c := range models.Categories() {
			if a.Supported {
				row = append(row, score(a.Score(c), colored))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	s := Summarize(r.Analyses)
	footer := []string{fmt.Sprintf("%d files", s.Files), "mean"}
	for _, c := range models.Categories() {
		if s.Supported == 0 {
			footer = append(footer, "-")
			continue
		}
		footer = append(footer, strconv.Itoa(s.MeanScores[c]))
	}
	headers := []string{"File", "Lang", "Bugs", "Complexity", "Security", "Coverage", "Perf", "Smells"}
	return NewTable("Summary", headers, rows, footer, nil)
}

func score(n int, colored bool) string {
	text := strconv.Itoa(n)
	if !colored {
		return text
	}
	switch {
	case n >= 85:
		return color.GreenString(text)
	case n >= 60:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

func bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
