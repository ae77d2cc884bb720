// Package validator is the contract guard between the document loader and
// the compilers. The embedded CUE schema types every field the compilers
// read; a document that fails unification is rejected before typed parsing
// so the compilers never see silently mistyped data.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator validates design documents against the CUE schema contract.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator with the embedded CUE schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks that a decoded design document conforms to #Design.
// Returns nil if valid, or an error explaining the first failure.
func (v *Validator) Validate(doc interface{}) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling document as CUE: %w", dataValue.Err())
	}

	designDef := v.schema.LookupPath(cue.ParsePath("#Design"))
	if designDef.Err() != nil {
		return fmt.Errorf("looking up #Design definition: %w", designDef.Err())
	}

	unified := designDef.Unify(dataValue)
	// Concrete(true) makes a missing required field (reason.root, sta.cell)
	// an error instead of an incomplete value.
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// ValidationErrors returns every validation error for a document, one
// string per problem, or nil when the document is valid.
func (v *Validator) ValidationErrors(doc interface{}) []string {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	designDef := v.schema.LookupPath(cue.ParsePath("#Design"))
	if designDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", designDef.Err())}
	}

	unified := designDef.Unify(dataValue)
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}
