// Package schema checks parsed documents against the published output
// contract before they are written or stored.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

//go:embed parsed_document.schema.json
var documentSchema []byte

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

// ValidationError lists every schema violation found in one document.
type ValidationError struct {
	Slug   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document %q violates schema: %s", e.Slug, strings.Join(e.Errors, "; "))
}

// Schema returns the raw JSON schema.
func Schema() []byte {
	return documentSchema
}

func load() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
	})
	return compiled, compileErr
}

// Validate returns a *ValidationError when doc does not conform.
func Validate(doc screenplay.ParsedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return ValidateJSON(doc.Slug, data)
}

// ValidateJSON validates an already-encoded document.
func ValidateJSON(slug string, data []byte) error {
	s, err := load()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Slug: slug}
	for _, e := range result.Errors() {
		verr.Errors = append(verr.Errors, e.String())
	}
	return verr
}
