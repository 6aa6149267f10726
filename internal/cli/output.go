package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/tarefas/internal/task"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The operation ran and was refused: validation, not found, conflict, busy, name taken
	ExitCommandError = 2 // The operation never ran: bad arguments, config, database cannot be opened
)

// Codes reported for failures that carry no task error code.
const (
	CodeCommandError = "COMMAND_ERROR"
	CodeError        = "ERROR"
)

// ExitError carries the process exit code of a failed command together
// with the message shown to the user. The task error, if any, stays
// reachable through Unwrap.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set when the command already wrote its own failure
	// output, so Execute only sets the exit code.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode picks the reported code for err: the task error code when
// there is one, a generic code otherwise.
func errorCode(err *ExitError) string {
	if code := task.CodeOf(err); code != "" {
		return string(code)
	}
	if err.Code == ExitCommandError {
		return CodeCommandError
	}
	return CodeError
}

// ErrorDetails names the input field and task a task error refers to.
type ErrorDetails struct {
	Field string `json:"field,omitempty"`
	ID    string `json:"id,omitempty"`
}

func (d ErrorDetails) String() string {
	var parts []string
	if d.Field != "" {
		parts = append(parts, "field="+d.Field)
	}
	if d.ID != "" {
		parts = append(parts, "task="+d.ID)
	}
	return strings.Join(parts, " ")
}

// detailsOf returns the ErrorDetails of the task error in err's chain, or
// nil when there is nothing to add.
func detailsOf(err error) any {
	var te *task.Error
	if !errors.As(err, &te) || (te.Field == "" && te.ID == "") {
		return nil
	}
	return ErrorDetails{Field: te.Field, ID: te.ID}
}

// TextRenderer is implemented by payloads with a custom text rendering.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// OutputFormatter writes command results as JSON envelopes or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // progress output; Writer when nil
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse. Code is a task error code
// (VALIDATION, NOT_FOUND, CONFLICT, INVARIANT_VIOLATION, BUSY) or one of
// CodeCommandError and CodeError.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data. Text mode uses its TextRenderer when it has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if r, ok := data.(TextRenderer); ok {
		return r.RenderText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Report writes a failed command's error with its code and task details.
func (f *OutputFormatter) Report(err *ExitError) error {
	return f.Error(errorCode(err), err.Error(), detailsOf(err))
}

// Error writes an error envelope, or one text line plus the details in
// verbose mode.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Progress reports a step of a long-running command (import, test) in
// verbose mode. It never writes to Writer when ErrWriter is set, so JSON
// output stays one document.
func (f *OutputFormatter) Progress(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
