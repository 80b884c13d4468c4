package usecase

import (
	"bytes"
	"embed"
	"errors"
	"fmt"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	registrationSchema = mustCompileSchema("registration.json")
	emailSchema        = mustCompileSchema("email.json")
)

// compileSchema builds a *santhosh.Schema from an embedded schema document.
func compileSchema(name string) (*santhosh.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

func mustCompileSchema(name string) *santhosh.Schema {
	sch, err := compileSchema(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return sch
}

// schemaViolations flattens a validation failure into leaf messages.
func schemaViolations(err error) []string {
	var ve *santhosh.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	return collectValidationErrors(ve)
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.Error())
	}
	return msgs
}
