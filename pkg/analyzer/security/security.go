// Package security flags vulnerability patterns such as injection,
// hardcoded credentials and unsafe DOM writes.
package security

import (
	"strings"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/parser"
	"github.com/panbanda/probe/pkg/patterns"
	"github.com/panbanda/probe/pkg/source"
)

const (
	// MinScore is the floor of the security score.
	MinScore = 40

	criticalPenalty = 20
	warningPenalty  = 5

	defaultExcerptLength = 50
)

// Analyzer runs the vulnerability rules for a unit's language.
type Analyzer struct {
	excerptLength int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithExcerptLength sets the maximum length of code excerpts.
func WithExcerptLength(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.excerptLength = n
		}
	}
}

// New creates a security analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{excerptLength: defaultExcerptLength}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type rule struct {
	kind     models.Kind
	title    string
	severity models.Severity
	fix      string
	match    func(line string) bool
}

var credentialRule = rule{
	kind:     models.KindHardcodedCredential,
	title:    "Hardcoded Password",
	severity: models.SeverityCritical,
	fix:      "Read secrets from environment variables",
	match:    patterns.Credential.MatchString,
}

var javaRules = []rule{
	{
		kind:     models.KindSQLInjection,
		title:    "SQL Injection",
		severity: models.SeverityCritical,
		fix:      "Use a PreparedStatement with parameters",
		match:    patterns.SQLConcat.MatchString,
	},
	credentialRule,
	{
		kind:     models.KindXSS,
		title:    "Potential XSS",
		severity: models.SeverityWarning,
		fix:      "Encode HTML output",
		match: func(line string) bool {
			return strings.Contains(line, "innerHTML") || strings.Contains(line, "document.write")
		},
	},
}

var pythonRules = []rule{
	{
		kind:     models.KindCodeExecution,
		title:    "Arbitrary Code Execution",
		severity: models.SeverityCritical,
		fix:      "Avoid eval/exec; use safe alternatives",
		match: func(line string) bool {
			return strings.Contains(line, "eval(") || strings.Contains(line, "exec(")
		},
	},
	{
		kind:     models.KindUnsafeDeserialization,
		title:    "Unsafe Deserialization",
		severity: models.SeverityCritical,
		fix:      "Use json or another safe format",
		match: func(line string) bool {
			return strings.Contains(line, "pickle.load")
		},
	},
	{
		kind:     models.KindShellInjection,
		title:    "Shell Injection",
		severity: models.SeverityCritical,
		fix:      "Call subprocess with an argument list",
		match:    patterns.ShellConcat.MatchString,
	},
	credentialRule,
}

var scriptRules = []rule{
	{
		kind:     models.KindXSS,
		title:    "XSS via innerHTML",
		severity: models.SeverityCritical,
		fix:      "Use textContent or a sanitizer",
		match: func(line string) bool {
			return strings.Contains(line, "innerHTML")
		},
	},
	{
		kind:     models.KindTokenInStorage,
		title:    "Token Stored in localStorage",
		severity: models.SeverityWarning,
		fix:      "Keep tokens in httpOnly cookies",
		match:    patterns.StorageToken.MatchString,
	},
	credentialRule,
}

func rulesFor(lang parser.Language) []rule {
	switch lang {
	case parser.LangJava:
		return javaRules
	case parser.LangPython:
		return pythonRules
	case parser.LangTypeScript, parser.LangJavaScript:
		return scriptRules
	default:
		return nil
	}
}

// Analyze applies the rules of the unit's language to every line.
func (a *Analyzer) Analyze(unit *source.Unit, _ extract.Result) models.SecurityReport {
	rules := rulesFor(unit.Language())

	vulns := []models.Finding{}
	for i, line := range unit.Lines() {
		for _, r := range rules {
			if !r.match(line) {
				continue
			}
			vulns = append(vulns, models.Finding{
				Kind:     r.kind,
				Title:    r.title,
				Line:     i + 1,
				Code:     models.Excerpt(line, a.excerptLength),
				Fix:      r.fix,
				Severity: r.severity,
			})
		}
	}

	score := max(MinScore, 100-
		models.CountSeverity(vulns, models.SeverityCritical)*criticalPenalty-
		models.CountSeverity(vulns, models.SeverityWarning)*warningPenalty)

	return models.SecurityReport{
		Score:           score,
		RiskLevel:       RiskLevel(score),
		Vulnerabilities: vulns,
		SecurePoints:    securePoints(unit.Text()),
		Recommendations: recommendations(vulns),
	}
}

// RiskLevel maps a security score to Low, Medium or High.
func RiskLevel(score int) string {
	switch {
	case score >= 80:
		return models.RiskLow
	case score >= 60:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func securePoints(code string) []string {
	lower := strings.ToLower(code)
	var out []string
	if strings.Contains(code, "PreparedStatement") || strings.Contains(lower, "parameterized") {
		out = append(out, "Parameterized queries used")
	}
	// HashMap and hashCode are not hashing of secrets.
	if strings.Contains(lower, "bcrypt") || strings.Contains(lower, "passwordencoder") ||
		(strings.Contains(lower, "hash") && !strings.Contains(lower, "hashmap") && !strings.Contains(lower, "hashcode")) {
		out = append(out, "Password hashing")
	}
	if strings.Contains(lower, "https") {
		out = append(out, "HTTPS connections")
	}
	if strings.Contains(lower, "validate") || strings.Contains(lower, "sanitize") {
		out = append(out, "Input validation")
	}
	if len(out) == 0 {
		out = append(out, "No critical vulnerability detected")
	}
	return out
}

func recommendations(vulns []models.Finding) []string {
	var sql, xss, secrets bool
	for _, v := range vulns {
		switch v.Kind {
		case models.KindSQLInjection:
			sql = true
		case models.KindXSS:
			xss = true
		case models.KindHardcodedCredential:
			secrets = true
		}
	}

	var out []string
	if sql {
		out = append(out, "Use prepared statements for every query")
	}
	if xss {
		out = append(out, "Encode all HTML output")
	}
	if secrets {
		out = append(out, "Use a secrets manager")
	}
	if len(out) == 0 {
		out = append(out, "Keep following security good practices")
	}
	return out
}
