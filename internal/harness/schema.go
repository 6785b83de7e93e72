package harness

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema/scenario.cue
var scenarioSchema string

// SchemaError is a scenario file that does not satisfy the scenario schema.
type SchemaError struct {
	File    string   `json:"file"`
	Line    int      `json:"line,omitempty"`
	Path    string   `json:"path,omitempty"`
	Message string   `json:"message"`
	Others  []string `json:"others,omitempty"` // further violations in the same file
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&buf, ":%d", e.Line)
	}
	if e.Path != "" {
		fmt.Fprintf(&buf, ": %s", e.Path)
	}
	fmt.Fprintf(&buf, ": %s", e.Message)
	if len(e.Others) > 0 {
		fmt.Fprintf(&buf, " (and %d more)", len(e.Others))
	}
	return buf.String()
}

// ValidateSchema checks raw scenario YAML against the embedded CUE schema.
// filename is used for error positions only.
func ValidateSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema, cue.Filename("scenario.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return formatSchemaError(filename, err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatSchemaError(filename, err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return formatSchemaError(filename, err)
	}
	return nil
}

// formatSchemaError keeps the first CUE error with a position in the
// scenario file and counts the rest.
func formatSchemaError(filename string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{File: filename, Message: err.Error()}
	}

	se := &SchemaError{File: filename}
	for i, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if i > 0 {
			se.Others = append(se.Others, msg)
			continue
		}
		se.Message = msg
		se.Path = strings.Join(e.Path(), ".")
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				se.Line = pos.Line()
				break
			}
		}
	}
	return se
}
