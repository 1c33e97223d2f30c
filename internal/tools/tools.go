// Package tools exposes the analytics operations as callable tools
// with declarative parameter schemas. Each tool accepts a JSON object
// as input and returns a JSON document, so the set can be handed to
// an agent runtime or invoked directly over the API.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	langchain "github.com/tmc/langchaingo/tools"

	"larder/internal/models"
)

var _ langchain.Tool = (*Tool)(nil)

// Param describes one schema parameter
type Param struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema is the declarative description of a tool's interface
type Schema struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  map[string]Param `json:"parameters"`
	Required    []string         `json:"required,omitempty"`
}

// Tool is a named operation taking a JSON object and returning a JSON
// document. It satisfies the langchaingo tools.Tool interface.
type Tool struct {
	schema Schema
	run    func(ctx context.Context, input string) (interface{}, error)
}

// Name returns the tool's registered name
func (t *Tool) Name() string { return t.schema.Name }

// Description returns a summary of the tool including its parameters
func (t *Tool) Description() string {
	var b strings.Builder
	b.WriteString(t.schema.Description)
	if len(t.schema.Parameters) > 0 {
		b.WriteString(" Input is a JSON object with fields:")
		for name, p := range t.schema.Parameters {
			fmt.Fprintf(&b, " %s (%s, %s);", name, p.Type, p.Description)
		}
	}
	return b.String()
}

// Schema returns the tool's parameter schema
func (t *Tool) Schema() Schema { return t.schema }

// Call runs the tool with a JSON object input and returns the result
// serialized as JSON.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	result, err := t.run(ctx, input)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding result of %s: %w", t.schema.Name, err)
	}
	return string(out), nil
}

// decode parses a JSON object input into args. An empty input is
// treated as an empty object.
func decode(input string, args interface{}) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		trimmed = "{}"
	}
	if err := json.Unmarshal([]byte(trimmed), args); err != nil {
		return fmt.Errorf("%w: tool input must be a JSON object: %v", models.ErrInvalidInput, err)
	}
	return nil
}
