// Package schema checks the config file and the output document against
// embedded CUE definitions.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Definitions checked by the validator.
const (
	ConfigDef   = "#Config"
	DocumentDef = "#Document"
)

// Validator holds the compiled schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateConfig checks a JSON config file against #Config.
func (v *Validator) ValidateConfig(data []byte) error {
	return v.validate(ConfigDef, "config", data)
}

// ValidateDocument checks a rendered connectivity document against #Document.
func (v *Validator) ValidateDocument(data []byte) error {
	return v.validate(DocumentDef, "document", data)
}

func (v *Validator) validate(def, what string, data []byte) error {
	value := v.ctx.CompileBytes(data, cue.Filename(what+".json"))
	if value.Err() != nil {
		return fmt.Errorf("compiling %s as CUE: %w", what, value.Err())
	}

	schema := v.schema.LookupPath(cue.ParsePath(def))
	if schema.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", def, schema.Err())
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s does not match %s: %w", what, def, err)
	}
	return nil
}

// Details splits a validation error into one line per violation.
func Details(err error) []string {
	var lines []string
	for _, e := range errors.Errors(err) {
		lines = append(lines, e.Error())
	}
	return lines
}
