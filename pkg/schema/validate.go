package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"api_key": String(), "retries": Int(), "tags": Slice(String())}
type Schema map[string]Type

// Validate checks that every field of the schema is present in data with the right type.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	return ValidateFields(schema, data, schema.keys()...)
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: ReasonUnknown})
			continue
		}

		value, ok := data[fieldName]
		if !ok {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: ReasonRequired})
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: err.Error(), Value: value})
		}
	}
	return aggregate(errs)
}

// ValidatePresent type-checks the keys of data that the schema knows about.
// Absent keys are fine; unknown keys are reported only when strict is set.
func ValidatePresent(schema Schema, data map[string]any, strict bool) error {
	var errs []error
	for _, key := range sortedKeys(data) {
		value := data[key]
		fieldType, known := schema[key]
		if !known {
			if strict {
				errs = append(errs, &ValidationError{Key: key, Reason: ReasonUnknown, Value: value})
			}
			continue
		}
		// nil clears a key and is valid for every type.
		if value == nil {
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	return aggregate(errs)
}

func (s Schema) keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
