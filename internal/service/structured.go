package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodeStructured parses a model's JSON answer into out and enforces the
// `validate` tags declared on out's type.
func DecodeStructured(raw string, out any) error {
	cleaned := CleanJSONBlock(raw)
	if cleaned == "" {
		return fmt.Errorf("empty structured response")
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}

	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("structured response violates schema: %w", err)
	}
	return nil
}

// CleanJSONBlock removes markdown code fences models add around JSON.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
