package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"script.py", LangPython},
		{"module.pyw", LangPython},
		{"app.ts", LangTypeScript},
		{"calculator.service.ts", LangTypeScript},
		{"component.tsx", LangTypeScript},
		{"script.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"Main.java", LangJava},
		{"src/main/java/com/acme/UserService.JAVA", LangJava},
		{"main.go", LangUnknown},
		{"README.md", LangUnknown},
		{"Makefile", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLanguageFamilies(t *testing.T) {
	assert.True(t, LangJava.BraceDelimited())
	assert.True(t, LangJavaScript.BraceDelimited())
	assert.False(t, LangPython.BraceDelimited())

	assert.True(t, LangTypeScript.Script())
	assert.False(t, LangJava.Script())
	assert.Len(t, Supported(), 4)
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range Supported() {
		tsLang, err := GetTreeSitterLanguage(lang)
		require.NoError(t, err, "language %s", lang)
		assert.NotNil(t, tsLang)
	}

	_, err := GetTreeSitterLanguage(LangUnknown)
	assert.Error(t, err)
}

func TestCheckSyntax(t *testing.T) {
	ctx := context.Background()

	t.Run("valid python", func(t *testing.T) {
		report := CheckSyntax(ctx, []byte("import pytest\n\ndef test_add():\n    assert 1 + 1 == 2\n"), LangPython)
		assert.True(t, report.Checked)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Issues)
	})

	t.Run("valid javascript", func(t *testing.T) {
		src := "describe('calc', () => {\n  it('adds', () => {\n    expect(1 + 1).toBe(2);\n  });\n});\n"
		report := CheckSyntax(ctx, []byte(src), LangJavaScript)
		assert.True(t, report.Valid)
	})

	t.Run("broken java", func(t *testing.T) {
		src := "class CalculatorTest {\n  @Test\n  void add( {\n}\n"
		report := CheckSyntax(ctx, []byte(src), LangJava)
		assert.True(t, report.Checked)
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Issues)
	})

	t.Run("unsupported", func(t *testing.T) {
		report := CheckSyntax(ctx, []byte("x"), LangUnknown)
		assert.False(t, report.Checked)
	})
}
