package core

import (
	"fmt"
	"reflect"
)

var (
	byHeader = make(map[string]FieldSpec)
	byKey    = make(map[string]FieldSpec)
)

func init() {
	for _, spec := range showFields {
		register(spec)
	}
}

// register adds a column to the lookup tables.
// Panics if the header or key is already registered, or if the key does not
// name a ShowRecord field of a kind matching the column type.
func register(spec FieldSpec) {
	if _, exists := byHeader[spec.Header]; exists {
		panic(fmt.Sprintf("column already registered: %s", spec.Header))
	}
	if _, exists := byKey[spec.Key]; exists {
		panic(fmt.Sprintf("field already registered: %s", spec.Key))
	}

	idx, ok := recordFields[spec.Key]
	if !ok {
		panic(fmt.Sprintf("unknown show field: %s", spec.Key))
	}
	kind := reflect.TypeOf(ShowRecord{}).FieldByIndex(idx).Type.Kind()
	if want := fieldKind(spec.Type); kind != want {
		panic(fmt.Sprintf("field %s is %s, column %q needs %s", spec.Key, kind, spec.Header, want))
	}

	byHeader[spec.Header] = spec
	byKey[spec.Key] = spec
}

func fieldKind(ft FieldType) reflect.Kind {
	switch ft {
	case FieldNumeric:
		return reflect.Ptr
	case FieldBool:
		return reflect.Bool
	default:
		return reflect.String
	}
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	default:
		return "value"
	}
}
