package models

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/analysis.schema.json
var analysisSchema []byte

const analysisSchemaURL = "analysis.schema.json"

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// AnalysisSchema returns the embedded JSON schema for Analysis documents.
func AnalysisSchema() []byte {
	return analysisSchema
}

func schema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(analysisSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse analysis schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(analysisSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add analysis schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(analysisSchemaURL)
	})
	return compiledSchema, compileErr
}

// ValidateAnalysisJSON checks a serialized analysis against the schema.
func ValidateAnalysisJSON(data []byte) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode analysis: %w", err)
	}
	return sch.Validate(inst)
}

// ValidateAnalysis serializes a and validates it against the schema.
func ValidateAnalysis(a *Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return ValidateAnalysisJSON(data)
}
