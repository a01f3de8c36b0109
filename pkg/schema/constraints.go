package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Check validates a rendered value against the constraints. Empty values pass
// every rule so unset fields are never flagged.
func (c *Constraints) Check(value string, fieldType FieldType) error {
	if c == nil {
		return nil
	}
	if value == "" {
		return nil
	}

	switch fieldType {
	case FieldTypeInteger, FieldTypeNumber:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		if fieldType == FieldTypeInteger && number != float64(int64(number)) {
			return fmt.Errorf("%q is not an integer", value)
		}
		if c.Min != nil && number < *c.Min {
			return fmt.Errorf("must be at least %s", formatBound(*c.Min))
		}
		if c.Max != nil && number > *c.Max {
			return fmt.Errorf("must be at most %s", formatBound(*c.Max))
		}
	case FieldTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%q is not a boolean", value)
		}
	default:
		length := utf8.RuneCountInString(value)
		if c.MinLength != nil && length < *c.MinLength {
			return fmt.Errorf("must be at least %d characters", *c.MinLength)
		}
		if c.MaxLength != nil && length > *c.MaxLength {
			return fmt.Errorf("must be at most %d characters", *c.MaxLength)
		}
	}

	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
		}
		if !re.MatchString(value) {
			return fmt.Errorf("must match %s", c.Pattern)
		}
	}

	if len(c.Enum) > 0 {
		for _, allowed := range c.Enum {
			if FormatValue(allowed) == value {
				return nil
			}
		}
		options := make([]string, 0, len(c.Enum))
		for _, allowed := range c.Enum {
			options = append(options, FormatValue(allowed))
		}
		return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
	}
	return nil
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
