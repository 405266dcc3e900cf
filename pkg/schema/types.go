package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON round trips turn every number into float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type anyType struct{}

func (anyType) Name() string { return "any" }

func (anyType) Validate(any) error { return nil }

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type mapType struct {
	elem Type
}

func (t mapType) Name() string { return "{" + t.elem.Name() + "}" }

func (t mapType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("expected string-keyed map, got %T", value)
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := t.elem.Validate(iter.Value().Interface()); err != nil {
			return fmt.Errorf("key %q: %w", iter.Key().String(), err)
		}
	}
	return nil
}

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error { return t.validate(value) }

// validate is shared; validator.Validate caches parsed tags and is safe for concurrent use.
var validate = validator.New()

type taggedType struct {
	name string
	tag  string
}

func (t taggedType) Name() string { return t.name }

func (t taggedType) Validate(value any) error {
	if err := validate.Var(value, t.tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("failed %q rule", verrs[0].Tag())
		}
		return err
	}
	return nil
}

// String creates a string type validator.
func String() Type { return stringType{} }

// Int creates an integer type validator. Whole float64 values are accepted.
func Int() Type { return intType{} }

// Float creates a float type validator.
func Float() Type { return floatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return boolType{} }

// Any accepts every value.
func Any() Type { return anyType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Map creates a validator for string-keyed maps whose values are of the given type.
func Map(elem Type) Type { return mapType{elem: elem} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, fn func(any) error) Type {
	return customType{name: name, validate: fn}
}

// Tagged validates values with go-playground/validator rules, e.g. Tagged("email", "required,email").
func Tagged(name, tag string) Type {
	return taggedType{name: name, tag: tag}
}

// ParseType converts a type string to a Type.
// Supports "string", "int", "float", "bool", "any", "[T]" for slices and "{T}" for maps.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if n := len(typeStr); n > 2 {
		open, close := typeStr[0], typeStr[n-1]
		if (open == '[' && close == ']') || (open == '{' && close == '}') {
			elem, err := ParseType(typeStr[1 : n-1])
			if err != nil {
				return nil, err
			}
			if open == '[' {
				return Slice(elem), nil
			}
			return Map(elem), nil
		}
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
