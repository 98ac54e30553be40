package llm

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// declarationsFromDefinitions converts tool definitions to genai function
// declarations. Tool input schemas are authored as JSON Schema (the
// registry's advertised format) and translated to the Gemini parameter
// schema here, at the provider boundary.
func declarationsFromDefinitions(defs []ToolDefinition) ([]*genai.FunctionDeclaration, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		params, err := genaiSchema(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", def.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return decls, nil
}

// genaiSchema recursively translates a JSON Schema to a genai.Schema.
// Only the subset used by tool input schemas is supported: scalar types,
// objects with properties/required, and homogeneous arrays.
func genaiSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}

	out := &genai.Schema{Description: s.Description}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, prop := range s.Properties {
				converted, err := genaiSchema(prop)
				if err != nil {
					return nil, fmt.Errorf("property %q: %w", name, err)
				}
				out.Properties[name] = converted
			}
		}
		out.Required = s.Required
	case "array":
		out.Type = genai.TypeArray
		items, err := genaiSchema(s.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", s.Type)
	}

	return out, nil
}
