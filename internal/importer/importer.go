// Package importer bulk-loads tasks from CUE or YAML files.
//
// A file declares a top-level tasks list:
//
//	tasks: [
//		{name: "Write report", cost: 12.5, due_date: "2025-01-10"},
//	]
//
// The file is unified with an embedded CUE schema (schema.cue) before
// anything is created, so a malformed file creates nothing. Run then
// creates the tasks in file order and stops at the first failure.
package importer

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tarefas/internal/service"
	"github.com/roach88/tarefas/internal/task"
)

//go:embed schema.cue
var schemaSource string

// Error codes for import failures.
const (
	ErrCodeRead   = "IMPORT_READ"
	ErrCodeFormat = "IMPORT_FORMAT"
	ErrCodeSchema = "IMPORT_SCHEMA"
)

// Error is a load failure, with the CUE position when one is known.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads path and returns the tasks it declares.
// The format is chosen by extension: .cue, .yaml or .yml.
func Load(path string) ([]service.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeRead, Message: err.Error()}
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes data, named name, and validates it against the schema.
func Parse(name string, data []byte) ([]service.Input, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}

	var doc cue.Value
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".cue":
		doc = ctx.CompileBytes(data, cue.Filename(name))
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &Error{Code: ErrCodeFormat, Message: fmt.Sprintf("%s: %v", name, err)}
		}
		doc = ctx.Encode(plainDates(raw))
	default:
		return nil, &Error{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported file type %q (want .cue, .yaml or .yml)", ext)}
	}
	if err := doc.Err(); err != nil {
		return nil, cueError(ErrCodeFormat, err)
	}

	if !doc.LookupPath(cue.ParsePath("tasks")).Exists() {
		return nil, &Error{Code: ErrCodeSchema, Message: fmt.Sprintf("%s: missing top-level tasks list", name)}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}

	var inputs []service.Input
	if err := unified.LookupPath(cue.ParsePath("tasks")).Decode(&inputs); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}
	return inputs, nil
}

// plainDates rewrites the time.Time values yaml.v3 produces for unquoted
// dates back to YYYY-MM-DD strings.
func plainDates(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(task.DateLayout)
	case map[string]any:
		for k, e := range x {
			x[k] = plainDates(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = plainDates(e)
		}
		return x
	default:
		return v
	}
}

func cueError(code string, err error) error {
	e := &Error{Code: code, Message: cueerrors.Details(err, nil)}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		e.Message = errs[0].Error()
		e.Pos = errs[0].Position()
	}
	return e
}

// Creator creates one task. Implemented by *service.Service.
type Creator interface {
	Create(ctx context.Context, in service.Input) (task.Task, error)
}

// Run creates inputs in order and returns the tasks created. On the first
// failure it stops; the tasks created before it stay.
func Run(ctx context.Context, c Creator, inputs []service.Input) ([]task.Task, error) {
	created := make([]task.Task, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		t, err := c.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("import task %d (%q): %w", i+1, in.Name, err)
		}
		created = append(created, t)
	}
	return created, nil
}
