// ABOUTME: Input validation for record names and quantities.
// ABOUTME: Names must start with a letter and be alphanumeric; quantities are unsigned integer literals.
package models

import (
	"regexp"
	"strconv"
)

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	quantityPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateName checks that name starts with a letter and contains only letters and digits.
// This keeps the separator out of names so the line format cannot be corrupted.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return &ValidationError{
			Field: "name",
			Value: name,
			Rule:  "must start with a letter and contain only letters and digits",
		}
	}
	return nil
}

// ParseQuantity validates and converts a quantity literal.
func ParseQuantity(s string) (int64, error) {
	if !quantityPattern.MatchString(s) {
		return 0, &ValidationError{
			Field: "quantity",
			Value: s,
			Rule:  "must be a non-negative integer",
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{
			Field: "quantity",
			Value: s,
			Rule:  "is out of range",
		}
	}
	return n, nil
}
