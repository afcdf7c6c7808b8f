package toolreg

import (
	"fmt"
	"math"
)

// validateArgs checks args against a JSON Schema object before the tool
// runs: required keys present, primitive types correct, enum values
// allowed. Unknown keys pass through untouched; models routinely add them.
func validateArgs(schema, args map[string]any) error {
	if schema == nil {
		return nil
	}
	props, _ := schema["properties"].(map[string]any)

	if required := requiredKeys(schema["required"]); len(required) > 0 {
		for _, key := range required {
			if _, ok := args[key]; !ok {
				return fmt.Errorf("falta el campo %q", key)
			}
		}
	}

	for key, raw := range args {
		propRaw, ok := props[key]
		if !ok {
			continue
		}
		prop, ok := propRaw.(map[string]any)
		if !ok {
			continue
		}
		if err := checkValue(key, raw, prop); err != nil {
			return err
		}
	}
	return nil
}

func requiredKeys(v any) []string {
	switch keys := v.(type) {
	case []string:
		return keys
	case []any:
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := k.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func checkValue(key string, value any, prop map[string]any) error {
	typ, _ := prop["type"].(string)
	switch typ {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("el campo %q debe ser texto", key)
		}
		if err := checkEnum(key, s, prop["enum"]); err != nil {
			return err
		}
	case "number":
		if _, ok := asFloat(value); !ok {
			return fmt.Errorf("el campo %q debe ser un número", key)
		}
	case "integer":
		f, ok := asFloat(value)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("el campo %q debe ser un entero", key)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("el campo %q debe ser booleano", key)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("el campo %q debe ser una lista", key)
		}
	}
	return nil
}

func checkEnum(key, value string, enum any) error {
	var allowed []string
	switch vals := enum.(type) {
	case nil:
		return nil
	case []string:
		allowed = vals
	case []any:
		for _, v := range vals {
			if s, ok := v.(string); ok {
				allowed = append(allowed, s)
			}
		}
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("valor %q no permitido para %q", value, key)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
