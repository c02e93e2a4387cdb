package input

import (
	"sort"
	"strings"
)

// Violations collects field-level validation failures keyed by field name.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records msg for field unless the field already has a violation.
func (v Violations) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Check records err under field when it is non-nil.
func (v Violations) Check(field string, err error) {
	if err != nil {
		v.Add(field, err.Error())
	}
}

func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, v[field])
	}
	return strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there are no violations.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}
