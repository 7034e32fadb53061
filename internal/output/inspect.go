package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

// InspectionReport renders drafts together with the analyses whose
// coverage estimate used the drafted test counts.
type InspectionReport struct {
	Analyses *AnalysisReport
	Drafts   *DraftReport
}

func (r *InspectionReport) RenderData() any {
	return struct {
		Analysis any `json:"analysis"`
		Tests    any `json:"tests"`
	}{r.Analyses.RenderData(), r.Drafts.RenderData()}
}

func (r *InspectionReport) RenderText(w io.Writer, colored bool) error {
	if err := r.Drafts.RenderText(w, colored); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return r.Analyses.RenderText(w, colored)
}

func (r *InspectionReport) RenderMarkdown(w io.Writer) error {
	if err := r.Drafts.RenderMarkdown(w); err != nil {
		return err
	}
	return r.Analyses.RenderMarkdown(w)
}

// RenderSARIF reports the findings of the analyses.
func (r *InspectionReport) RenderSARIF() (*sarif.Report, error) {
	return r.Analyses.RenderSARIF()
}
