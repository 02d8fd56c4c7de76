// SPDX-License-Identifier: Apache-2.0
// Package schema supplies the VM's pluggable schema contract: a
// validate(schema, value) → bool predicate plus property enumeration
// over an object schema. How schemas are authored is opaque to the VM;
// this package only fixes the
// concrete schema value type (github.com/invopop/jsonschema.Schema,
// the struct the rest of the ecosystem already uses to describe tool
// and function parameters) and a minimal structural validator.
//
// See DESIGN.md for why the validator below is hand-rolled: no JSON
// Schema *validation* library appears anywhere in the retrieved corpus,
// only a schema *generator* (invopop/jsonschema itself).
package schema

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema is the concrete schema value type atoms declare as InputSchema
// and OutputSchema.
type Schema = jsonschema.Schema

// Validate reports whether value conforms to schema. A nil schema
// always validates (an atom with no declared input schema accepts
// anything). Validate only checks structural shape — type, required
// properties, nested object/array shape — not formats, patterns, or
// numeric ranges; that is sufficient for the VM's own contract.
func Validate(s *Schema, value any) bool {
	if s == nil {
		return true
	}
	return validateSchema(s, value)
}

func validateSchema(s *Schema, value any) bool {
	if s.Type != "" && !validateType(s.Type, value) {
		return false
	}

	switch s.Type {
	case "object", "":
		obj, ok := value.(map[string]any)
		if !ok {
			if s.Type == "object" {
				return false
			}
			return true
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return false
			}
		}
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				propValue, present := obj[pair.Key]
				if !present {
					continue
				}
				if !validateSchema(pair.Value, propValue) {
					return false
				}
			}
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return false
		}
		if s.Items != nil {
			for _, item := range items {
				if !validateSchema(s.Items, item) {
					return false
				}
			}
		}
	}
	return true
}

func validateType(typ string, value any) bool {
	if value == nil {
		return typ == "null"
	}
	switch typ {
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch v := value.(type) {
		case int, int64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "null":
		return value == nil
	default:
		return true
	}
}

// PropertyNames enumerates the declared properties of an object schema,
// in declaration order. Used by the return atom to build its output
// object from ctx.state. A nil schema or non-object schema yields no
// properties.
func PropertyNames(s *Schema) []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Object builds an object-typed schema that requires the given property
// names, each accepting any value. It declares no Properties, so
// PropertyNames returns none for it. Convenience used by tests and by
// atoms that need to describe a loosely typed object shape.
func Object(required ...string) *Schema {
	return &Schema{
		Type:     "object",
		Required: required,
	}
}

// Describe renders a human-readable summary of a schema, used in
// ValidationError messages naming the offending payload.
func Describe(s *Schema) string {
	if s == nil {
		return "<none>"
	}
	return fmt.Sprintf("type=%s required=%v", s.Type, s.Required)
}
