package models

// BugReport is the result of the bug detection pass.
type BugReport struct {
	Score       int       `json:"score"`
	Issues      []Finding `json:"issues"`
	Strengths   []string  `json:"strengths"`
	Suggestions []string  `json:"suggestions"`
	TotalIssues int       `json:"total_issues"`
}

// ComplexityReport is the result of the complexity pass.
type ComplexityReport struct {
	Score           int     `json:"score"`
	Cyclomatic      float64 `json:"cyclomatic"`
	Maintainability int     `json:"maintainability"`
	Duplication     int     `json:"duplication"`
	LinesOfCode     int     `json:"loc"`
	Functions       int     `json:"functions"`
	Level           string  `json:"level"`
}

// Risk levels reported by the security pass.
const (
	RiskLow           = "Low"
	RiskMedium        = "Medium"
	RiskHigh          = "High"
	RiskNotApplicable = "N/A"
)

// SecurityReport is the result of the security pass.
type SecurityReport struct {
	Score           int       `json:"score"`
	RiskLevel       string    `json:"risk_level"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
	SecurePoints    []string  `json:"secure_points"`
	Recommendations []string  `json:"recommendations"`
}

// Testability captures the source traits that make code harder to cover.
type Testability struct {
	HasDOM            bool `json:"has_dom"`
	HasExternalDeps   bool `json:"has_external_deps"`
	HasUIEvents       bool `json:"has_ui_events"`
	HasSideEffects    bool `json:"has_side_effects"`
	HasPureFunctions  bool `json:"has_pure_functions"`
	PureFunctionCount int  `json:"pure_function_count"`
	UntestableCount   int  `json:"untestable_count"`
}

// CoverageReport is the result of the coverage prediction pass.
type CoverageReport struct {
	Score             int         `json:"score"`
	EstimatedCoverage int         `json:"estimated_coverage"`
	Ratio             float64     `json:"coverage_ratio"`
	UncoveredLines    int         `json:"uncovered_lines"`
	MissingTests      int         `json:"missing_tests"`
	TestsGenerated    int         `json:"tests_generated"`
	FunctionsCount    int         `json:"functions_count"`
	Branches          int         `json:"branches"`
	Testability       Testability `json:"testability"`
	Warnings          []Finding   `json:"warnings"`
	Strengths         []string    `json:"strengths"`
	Verdict           string      `json:"honest_verdict"`
}

// PerformanceReport is the result of the performance pass.
type PerformanceReport struct {
	Score       int       `json:"score"`
	Level       string    `json:"level"`
	Bottlenecks []Finding `json:"bottlenecks"`
	Complexity  string    `json:"complexity"`
	Strengths   []string  `json:"strengths"`
}

// SmellReport is the result of the code smell pass.
type SmellReport struct {
	Score             int       `json:"score"`
	Level             string    `json:"level"`
	Smells            []Finding `json:"smells"`
	SmellsCount       int       `json:"smells_count"`
	HighSeverityCount int       `json:"high_severity_count"`
	LinesPerFunction  int       `json:"lines_per_function"`
	Penalties         int       `json:"penalties"`
	Strengths         []string  `json:"strengths"`
	Verdict           string    `json:"honest_verdict"`
}
