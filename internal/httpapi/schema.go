package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/tarefas/internal/task"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Request body schemas, compiled once.
var (
	taskSchema = mustCompile("task.json")
	rankSchema = mustCompile("rank.json")
	nameSchema = mustCompile("name.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read embedded schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body, validates it against schema and decodes it
// into dst. Every failure is a validation error.
func decodeBody(r io.Reader, schema *jsonschema.Schema, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return task.NewValidationError("body", fmt.Sprintf("read body: %v", err))
	}
	if len(data) > maxBodyBytes {
		return task.NewValidationError("body", "request body too large")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return task.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return task.NewValidationError("body", fmt.Sprintf("decode body: %v", err))
	}
	return nil
}

// schemaError converts the first leaf cause of a schema failure into a
// validation error naming the offending field.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return task.NewValidationError("body", err.Error())
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		field = "body"
	}
	return task.NewValidationError(field, ve.Message)
}
