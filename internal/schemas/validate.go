// Package schemas validates JSON payloads received from clients.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed answers.schema.json
var answersSchema string

var answersLoader = gojsonschema.NewStringLoader(answersSchema)

// ValidationError lists every schema violation with its field path.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// ValidateAnswers checks the JSON-encoded list of {question, answer} pairs.
func ValidateAnswers(jsonContent string) error {
	return validate(answersLoader, jsonContent)
}

// ValidateJSONString validates JSON content against schema content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate(gojsonschema.NewStringLoader(schemaContent), jsonContent)
}

func validate(schema gojsonschema.JSONLoader, jsonContent string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
