package spellcheck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/spelling_report_schema.json
var reportSchemaJSON string

var (
	reportSchemaOnce     sync.Once
	compiledReportSchema *jsonschema.Schema
	reportSchemaErr      error
)

const reportSchemaURL = "https://meticulous.run/schemas/spelling-report.json"

// getCompiledReportSchema compiles the embedded spelling.json schema once and
// caches it, since the external spell checker runs once per repository and
// recompiling on every call would be wasted work.
func getCompiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		var doc any
		if err := json.Unmarshal([]byte(reportSchemaJSON), &doc); err != nil {
			reportSchemaErr = fmt.Errorf("spellcheck: parse embedded schema: %w", err)
			return
		}
		if err := compiler.AddResource(reportSchemaURL, doc); err != nil {
			reportSchemaErr = fmt.Errorf("spellcheck: add schema resource: %w", err)
			return
		}
		compiledReportSchema, reportSchemaErr = compiler.Compile(reportSchemaURL)
	})
	return compiledReportSchema, reportSchemaErr
}

// validateReportShape checks raw spelling.json bytes against the report
// schema before Load unmarshals them into []Candidate, so a malformed
// external-checker output fails with a precise schema error instead of a
// bare encoding/json type-mismatch message.
func validateReportShape(raw []byte) error {
	schema, err := getCompiledReportSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("spellcheck: report is not valid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("spellcheck: report does not match expected shape: %w", err)
	}
	return nil
}
