package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

// DOM id prefixes. A field at server/modelNumber renders as
// grb_line__server_modelNumber with its input at grb_value__server_modelNumber.
const (
	RootListID    = "grb_list"
	lineIDPrefix  = "grb_line_"
	valueIDPrefix = "grb_value_"
	listIDPrefix  = "grb_list_"
	groupIDPrefix = "grb_group_"
)

// EncodePath maps a schema path to an id fragment. Every segment is prefixed
// with "_"; bytes outside [A-Za-z0-9] are escaped as "-xx" so distinct paths
// never share an encoding.
func EncodePath(path string) string {
	var b strings.Builder
	for _, segment := range schema.SplitPath(path) {
		b.WriteByte('_')
		for i := 0; i < len(segment); i++ {
			c := segment[i]
			if isIDByte(c) {
				b.WriteByte(c)
				continue
			}
			fmt.Fprintf(&b, "-%02x", c)
		}
	}
	return b.String()
}

// DecodePath reverses EncodePath.
func DecodePath(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	if encoded[0] != '_' {
		return "", fmt.Errorf("tree: encoded path %q must start with '_'", encoded)
	}
	var segments []string
	for _, raw := range strings.Split(encoded[1:], "_") {
		var b strings.Builder
		for i := 0; i < len(raw); i++ {
			c := raw[i]
			if c != '-' {
				b.WriteByte(c)
				continue
			}
			if i+2 >= len(raw) {
				return "", fmt.Errorf("tree: truncated escape in %q", encoded)
			}
			value, err := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("tree: invalid escape in %q: %w", encoded, err)
			}
			b.WriteByte(byte(value))
			i += 2
		}
		if b.Len() == 0 {
			return "", fmt.Errorf("tree: empty segment in %q", encoded)
		}
		segments = append(segments, b.String())
	}
	return strings.Join(segments, schema.PathSeparator), nil
}

// LineID is the id of a field's list item.
func LineID(path string) string { return lineIDPrefix + EncodePath(path) }

// ValueID is the id of a field's input element.
func ValueID(path string) string { return valueIDPrefix + EncodePath(path) }

// ListID is the id of a group's nested list; the root list uses RootListID.
func ListID(path string) string {
	if schema.NormalizePath(path) == "" {
		return RootListID
	}
	return listIDPrefix + EncodePath(path)
}

// GroupID is the id of a group's list item.
func GroupID(path string) string { return groupIDPrefix + EncodePath(path) }

// PathFromLineID recovers the schema path from a LineID.
func PathFromLineID(id string) (string, error) {
	if !strings.HasPrefix(id, lineIDPrefix) {
		return "", fmt.Errorf("tree: %q is not a line id", id)
	}
	return DecodePath(strings.TrimPrefix(id, lineIDPrefix))
}

func isIDByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
