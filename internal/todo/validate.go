package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed envelope.schema.json
var envelopeSchema []byte

const envelopeSchemaURL = "https://tasklist.local/envelope.schema.json"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

func (r *ValidationResult) fail(path string, err error) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{Path: path, Err: err})
}

// Err joins all validation errors, or returns nil when the result is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Validator checks raw envelope blobs. The zero value only runs the minimal
// checks; use NewValidator to get JSON Schema validation.
type Validator struct {
	schema     *jsonschema.Schema
	compileErr error
}

// NewValidator compiles the embedded envelope schema. A compile failure is
// not fatal: the validator falls back to minimal checks and reports a warning.
func NewValidator() *Validator {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	v := &Validator{}
	if err := compiler.AddResource(envelopeSchemaURL, bytes.NewReader(envelopeSchema)); err != nil {
		v.compileErr = fmt.Errorf("load envelope schema: %w", err)
		return v
	}
	schema, err := compiler.Compile(envelopeSchemaURL)
	if err != nil {
		v.compileErr = fmt.Errorf("compile envelope schema: %w", err)
		return v
	}
	v.schema = schema
	return v
}

// Validate checks a raw blob against the envelope invariant: it must parse,
// schemaVersion must equal SchemaVersion, items must be an array of task
// objects with non-blank text, and ids must be unique.
func (v *Validator) Validate(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	doc, err := decodeGeneric(data)
	if err != nil {
		result.fail("", fmt.Errorf("parse envelope: %w", err))
		return result
	}

	if v != nil && v.schema != nil {
		result.UsedSchema = true
		if err := v.schema.Validate(doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	} else {
		if v != nil && v.compileErr != nil {
			result.Warnings = append(result.Warnings, v.compileErr.Error())
		}
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		validateMinimal(doc, result)
	}
	if !result.Valid {
		return result
	}

	// Blank text after sanitizing and id uniqueness are checked on the decoded items.
	env, err := Decode(data)
	if err != nil {
		result.fail("", err)
		return result
	}
	seen := make(map[string]int, len(env.Items))
	for i, task := range env.Items {
		if Sanitize(task.Text) == "" {
			result.fail(fmt.Sprintf("items[%d].text", i), fmt.Errorf("text is blank"))
			continue
		}
		if first, ok := seen[task.ID]; ok {
			result.fail(fmt.Sprintf("items[%d].id", i), fmt.Errorf("duplicate id %q (first at items[%d])", task.ID, first))
			continue
		}
		seen[task.ID] = i
	}
	return result
}

func decodeGeneric(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return doc, nil
}

// validateMinimal performs the structural checks without JSON Schema.
func validateMinimal(doc interface{}, result *ValidationResult) {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		result.fail("", fmt.Errorf("expected object"))
		return
	}

	version, ok := obj["schemaVersion"].(json.Number)
	if !ok {
		result.fail("schemaVersion", fmt.Errorf("missing required field"))
	} else if n, err := version.Int64(); err != nil || n != SchemaVersion {
		result.fail("schemaVersion", fmt.Errorf("expected %d, got %s", SchemaVersion, version))
	}

	raw, present := obj["items"]
	if !present {
		result.fail("items", fmt.Errorf("missing required field"))
		return
	}
	items, ok := raw.([]interface{})
	if !ok {
		result.fail("items", fmt.Errorf("expected array"))
		return
	}

	for i, item := range items {
		path := fmt.Sprintf("items[%d]", i)
		if err := validateTaskMinimal(item, path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

// validateTaskMinimal performs minimal task validation.
func validateTaskMinimal(item interface{}, path string) *ValidationError {
	task, ok := item.(map[string]interface{})
	if !ok {
		return &ValidationError{Path: path, Err: fmt.Errorf("expected object")}
	}

	for _, field := range []string{"id", "text"} {
		s, ok := task[field].(string)
		if !ok || s == "" || (field == "text" && strings.TrimSpace(s) == "") {
			return &ValidationError{
				Path: path + "." + field,
				Err:  fmt.Errorf("missing required field"),
			}
		}
	}

	if raw, ok := task["completed"]; ok {
		if _, ok := raw.(bool); !ok {
			return &ValidationError{Path: path + ".completed", Err: fmt.Errorf("expected boolean")}
		}
	}

	if raw, ok := task["priority"]; ok {
		s, _ := raw.(string)
		if !Priority(s).Valid() {
			return &ValidationError{
				Path: path + ".priority",
				Err:  fmt.Errorf("invalid priority %v, must be one of: low, medium, high", raw),
			}
		}
	}

	for _, field := range []string{"createdAt", "updatedAt"} {
		raw, ok := task[field]
		if !ok {
			continue
		}
		n, isNum := raw.(json.Number)
		if !isNum {
			return &ValidationError{Path: path + "." + field, Err: fmt.Errorf("expected integer")}
		}
		if _, err := n.Int64(); err != nil {
			return &ValidationError{Path: path + "." + field, Err: fmt.Errorf("expected integer, got %s", n)}
		}
	}

	return nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath converts a JSON Pointer such as "/items/0/text" to
// "items[0].text".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
