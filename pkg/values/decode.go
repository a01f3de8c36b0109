package values

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

// Format selects the payload decoder.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	format      Format
	resultsPath string
}

// WithFormat forces a decoder instead of sniffing the payload.
func WithFormat(format Format) DecodeOption {
	return func(opts *decodeOptions) {
		opts.format = Format(strings.ToLower(strings.TrimSpace(string(format))))
	}
}

// WithResultsPath points the decoder at a nested object (gjson syntax), for
// backends that wrap the payload, e.g. `{"success": true, "data": {...}}`
// with path "data".
func WithResultsPath(path string) DecodeOption {
	return func(opts *decodeOptions) {
		opts.resultsPath = strings.TrimSpace(path)
	}
}

// Decode parses a values payload. Two shapes are understood:
//
//   - the list form reported by configuration backends:
//     {"values": [{"item": "/server/modelNumber", "value": "2.2.0", "status": "unchanged"}],
//     "meta": [{"item": "/server/modelNumber", "type": "string", "default": "1.0"}]}
//   - a nested object whose leaves are values: {"server": {"modelNumber": "2.2.0"}}
//
// Meta rows are merged into the entry for the same path; a meta row without a
// matching value produces an entry with a nil Value. Entries keep payload
// order so callers can detect duplicates.
func Decode(data []byte, options ...DecodeOption) ([]Entry, error) {
	opts := decodeOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("values: payload is empty")
	}

	payload, err := toJSON(data, opts.format)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(payload)
	if opts.resultsPath != "" {
		root = root.Get(opts.resultsPath)
		if !root.Exists() {
			return nil, fmt.Errorf("values: results path %q not found", opts.resultsPath)
		}
	}
	if !root.IsObject() {
		return nil, errors.New("values: payload root must be an object")
	}

	list := root.Get("values")
	meta := root.Get("meta")
	if list.IsArray() || meta.IsArray() {
		return decodeList(list, meta), nil
	}
	return flatten(root), nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, errors.New("values: invalid JSON payload")
		}
		return data, nil
	case FormatYAML:
		return yamlToJSON(data)
	case FormatTOML:
		return tomlToJSON(data)
	case FormatAuto:
		if gjson.ValidBytes(data) {
			return data, nil
		}
		if out, err := tomlToJSON(data); err == nil {
			return out, nil
		}
		out, err := yamlToJSON(data)
		if err != nil {
			return nil, errors.New("values: payload is not JSON, TOML, or YAML")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("values: unsupported format %q", format)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("values: parse yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("values: convert yaml: %w", err)
	}
	return out, nil
}

func tomlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("values: parse toml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("values: convert toml: %w", err)
	}
	return out, nil
}

func decodeList(list, meta gjson.Result) []Entry {
	var entries []Entry
	positions := make(map[string]int)

	list.ForEach(func(_, row gjson.Result) bool {
		path := rowPath(row)
		if path == "" {
			return true
		}
		entry := Entry{
			Path:  path,
			Value: rowValue(row.Get("value")),
			Meta: Meta{
				Type:        row.Get("type").String(),
				Description: row.Get("description").String(),
				Default:     rowDefault(row),
				Source:      row.Get("source").String(),
				Status:      normalizeStatus(row.Get("status").String()),
			},
		}
		if _, seen := positions[path]; !seen {
			positions[path] = len(entries)
		}
		entries = append(entries, entry)
		return true
	})

	meta.ForEach(func(_, row gjson.Result) bool {
		path := rowPath(row)
		if path == "" {
			return true
		}
		idx, ok := positions[path]
		if !ok {
			positions[path] = len(entries)
			entries = append(entries, Entry{Path: path})
			idx = len(entries) - 1
		}
		mergeMeta(&entries[idx].Meta, row)
		return true
	})

	return entries
}

func mergeMeta(target *Meta, row gjson.Result) {
	if value := row.Get("type").String(); value != "" {
		target.Type = value
	}
	if value := row.Get("description").String(); value != "" {
		target.Description = value
	}
	if value := rowDefault(row); value != nil {
		target.Default = value
	}
	if value := row.Get("source").String(); value != "" && target.Source == "" {
		target.Source = value
	}
	if value := normalizeStatus(row.Get("status").String()); value != "" && target.Status == "" {
		target.Status = value
	}
}

func rowPath(row gjson.Result) string {
	for _, key := range []string{"item", "path", "key"} {
		if value := row.Get(key); value.Exists() && value.String() != "" {
			return schema.NormalizePath(value.String())
		}
	}
	return ""
}

func rowDefault(row gjson.Result) any {
	for _, key := range []string{"default", "defaultValue"} {
		if value := row.Get(key); value.Exists() {
			return rowValue(value)
		}
	}
	return nil
}

func rowValue(value gjson.Result) any {
	if !value.Exists() || value.Type == gjson.Null {
		return nil
	}
	return value.Value()
}

// flatten walks a nested object, emitting one entry per non-object leaf.
// Object keys are visited in sorted order so the output is deterministic even
// when the source decoder (YAML/TOML) did not preserve order.
func flatten(root gjson.Result) []Entry {
	var entries []Entry
	var walk func(prefix string, node gjson.Result)
	walk = func(prefix string, node gjson.Result) {
		keys := make([]string, 0)
		children := make(map[string]gjson.Result)
		node.ForEach(func(key, value gjson.Result) bool {
			keys = append(keys, key.String())
			children[key.String()] = value
			return true
		})
		sort.Strings(keys)
		for _, key := range keys {
			child := children[key]
			path := schema.JoinPath(prefix, key)
			if child.IsObject() {
				walk(path, child)
				continue
			}
			entries = append(entries, Entry{Path: path, Value: rowValue(child)})
		}
	}
	walk("", root)
	return entries
}
