package store

import (
	"encoding/json"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// marshalUnits converts compute units to JSON text for storage.
func marshalUnits(units []string) string {
	if len(units) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(units)
	return string(b)
}

// unmarshalUnits converts JSON text back to []string.
func unmarshalUnits(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var units []string
	_ = json.Unmarshal([]byte(s), &units)
	if len(units) == 0 {
		return nil
	}
	return units
}
