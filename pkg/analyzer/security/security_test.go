package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/extract"
	"github.com/panbanda/probe/pkg/models"
	"github.com/panbanda/probe/pkg/source"
)

func analyze(src, filename string) models.SecurityReport {
	unit := source.New(src, filename)
	return New().Analyze(unit, extract.Extract(unit))
}

func TestHardcodedCredential(t *testing.T) {
	for _, filename := range []string{"config.py", "Config.java", "config.ts", "config.js"} {
		t.Run(filename, func(t *testing.T) {
			report := analyze("x = 1\npassword = \"hunter2\"\ny = 2\n", filename)

			require.Len(t, report.Vulnerabilities, 1)
			v := report.Vulnerabilities[0]
			assert.Equal(t, models.KindHardcodedCredential, v.Kind)
			assert.Equal(t, models.SeverityCritical, v.Severity)
			assert.Equal(t, 2, v.Line)
			assert.Contains(t, v.Code, "hunter2")
			assert.NotEmpty(t, v.Fix)

			assert.Equal(t, 80, report.Score)
			assert.Equal(t, models.RiskLow, report.RiskLevel)
			assert.Contains(t, report.Recommendations, "Use a secrets manager")
		})
	}
}

func TestCredentialVariants(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`String PWD = 'abc';`, true},
		{`apiKey = "k-123"`, true},
		{`SECRET="s"`, true},
		{`password = ""`, false},
		{`password = getenv("PASSWORD")`, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			report := analyze(tt.line, "a.py")
			got := len(report.Vulnerabilities) == 1 && report.Vulnerabilities[0].Kind == models.KindHardcodedCredential
			if got != tt.want {
				t.Errorf("credential match on %q = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestJavaRules(t *testing.T) {
	src := `class Repo {
    ResultSet find(String name) {
        return stmt.executeQuery("SELECT * FROM users WHERE name = '" + name + "'");
    }
    void render() { el.innerHTML = body; }
}`
	report := analyze(src, "Repo.java")
	require.Len(t, report.Vulnerabilities, 2)
	assert.Equal(t, models.KindSQLInjection, report.Vulnerabilities[0].Kind)
	assert.Equal(t, 3, report.Vulnerabilities[0].Line)
	assert.Len(t, report.Vulnerabilities[0].Code, defaultExcerptLength)
	assert.Equal(t, models.KindXSS, report.Vulnerabilities[1].Kind)
	assert.Equal(t, models.SeverityWarning, report.Vulnerabilities[1].Severity)

	assert.Equal(t, 100-20-5, report.Score)
	assert.Equal(t, []string{"Use prepared statements for every query", "Encode all HTML output"}, report.Recommendations)
}

func TestPythonRules(t *testing.T) {
	src := "import os, pickle\nexec(code)\ndata = pickle.load(f)\nos.system('rm ' + path)\n"
	report := analyze(src, "tool.py")

	var kinds []models.Kind
	for _, v := range report.Vulnerabilities {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []models.Kind{
		models.KindCodeExecution,
		models.KindUnsafeDeserialization,
		models.KindShellInjection,
	}, kinds)
	assert.Equal(t, MinScore, report.Score)
	assert.Equal(t, models.RiskHigh, report.RiskLevel)
}

func TestScriptRules(t *testing.T) {
	src := "el.innerHTML = html;\nlocalStorage.setItem('authToken', t);\n"
	for _, filename := range []string{"a.ts", "a.js"} {
		report := analyze(src, filename)
		require.Len(t, report.Vulnerabilities, 2, filename)
		assert.Equal(t, models.KindXSS, report.Vulnerabilities[0].Kind)
		assert.Equal(t, models.SeverityCritical, report.Vulnerabilities[0].Severity)
		assert.Equal(t, models.KindTokenInStorage, report.Vulnerabilities[1].Kind)
		assert.Equal(t, 75, report.Score, filename)
		assert.Equal(t, models.RiskMedium, report.RiskLevel, filename)
	}
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, models.RiskLow, RiskLevel(100))
	assert.Equal(t, models.RiskLow, RiskLevel(80))
	assert.Equal(t, models.RiskMedium, RiskLevel(79))
	assert.Equal(t, models.RiskMedium, RiskLevel(60))
	assert.Equal(t, models.RiskHigh, RiskLevel(59))
}

func TestSecurePoints(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"PreparedStatement ps;", []string{"Parameterized queries used"}},
		{"bcrypt.hash(pw)", []string{"Password hashing"}},
		{"Map m = new HashMap(); int h = hash(x);", []string{"No critical vulnerability detected"}},
		{"fetch('https://api')", []string{"HTTPS connections"}},
		{"sanitize(input)", []string{"Input validation"}},
		{"", []string{"No critical vulnerability detected"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, securePoints(tt.code), tt.code)
	}
}

func TestAddScenarioHasNoCriticals(t *testing.T) {
	report := analyze("public int add(int a,int b){return a+b;}", "Calculator.java")
	assert.Empty(t, report.Vulnerabilities)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, []string{"Keep following security good practices"}, report.Recommendations)
}

func TestUnsupportedLanguage(t *testing.T) {
	report := analyze(`password = "hunter2"`, "notes.txt")
	assert.Empty(t, report.Vulnerabilities)
	assert.NotNil(t, report.Vulnerabilities)
	assert.Equal(t, 100, report.Score)
}
