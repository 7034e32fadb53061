package models

import (
	"github.com/panbanda/probe/pkg/parser"
)

// DraftOrigin records which path produced a draft.
type DraftOrigin string

const (
	OriginTemplate  DraftOrigin = "template"
	OriginModel     DraftOrigin = "model"
	OriginInterface DraftOrigin = "interface"
)

// Framework names the test framework a draft targets.
type Framework string

const (
	FrameworkPytest    Framework = "pytest"
	FrameworkJUnit     Framework = "junit5-mockito"
	FrameworkJestBed   Framework = "jest-testbed"
	FrameworkJest      Framework = "jest"
	FrameworkUndefined Framework = "none"
)

// Draft is a generated test file for one source file. It is not verified
// to compile or pass; it only carries the framework's test markers.
type Draft struct {
	File      string               `json:"file"`
	TestFile  string               `json:"test_file"`
	Language  parser.Language      `json:"language"`
	Framework Framework            `json:"framework"`
	Origin    DraftOrigin          `json:"origin"`
	Content   string               `json:"content"`
	TestCount int                  `json:"test_count"`
	Warnings  []string             `json:"warnings,omitempty"`
	Syntax    *parser.SyntaxReport `json:"syntax,omitempty"`
}
