package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

const (
	componentPrefix = "#/components/schemas/"

	// ChoicesExtension lists the chooser profiles a property belongs to.
	ChoicesExtension = "x-configgrid-choices"
	// OrderExtension positions a property among its siblings. Properties
	// without it follow in name order.
	OrderExtension = "x-configgrid-order"
)

var (
	ErrComponentNotFound = errors.New("openapi: component not found")
	ErrNotObject         = errors.New("openapi: component is not an object schema")
)

// Option configures Import.
type Option func(*options)

type options struct {
	validate bool
	title    string
}

// WithValidation runs kin-openapi document validation before importing.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// WithTitle overrides the schema title (defaults to the component title, then
// info.title).
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = strings.TrimSpace(title)
	}
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, isOpenAPI := payload["openapi"]
			_, isSwagger := payload["swagger"]
			return isOpenAPI || isSwagger
		}
	}
	lower := strings.ToLower(string(trimmed))
	return strings.HasPrefix(lower, "openapi:") || strings.Contains(lower, "\nopenapi:") ||
		strings.HasPrefix(lower, "swagger:") || strings.Contains(lower, "\nswagger:")
}

// Import loads an OpenAPI document and converts the named component schema
// into a configuration schema.
func Import(ctx context.Context, raw []byte, component string, opts ...Option) (schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return schema.Schema{}, err
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return schema.Schema{}, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	document, err := loader.LoadFromData(raw)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := document.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return schema.Schema{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	if document.Components == nil || document.Components.Schemas == nil {
		return schema.Schema{}, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	ref, ok := document.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return schema.Schema{}, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	if !isObject(ref.Value) {
		return schema.Schema{}, fmt.Errorf("%w: %q", ErrNotObject, component)
	}

	c := converter{definitions: make(map[string]schema.Node)}
	root := c.group("", ref.Value)
	root.Kind = schema.KindGroup
	root.Label = firstNonEmpty(cfg.title, ref.Value.Title, infoTitle(document))

	out := schema.Schema{Root: root}
	if len(c.definitions) > 0 {
		out.Definitions = c.definitions
	}
	return out, nil
}

type converter struct {
	definitions map[string]schema.Node
}

func (c *converter) group(key string, src *openapi3.Schema) schema.Node {
	node := schema.Node{
		Key:     key,
		Kind:    schema.KindGroup,
		Label:   src.Title,
		Help:    src.Description,
		Choices: extensionStrings(src.Extensions, ChoicesExtension),
	}
	for _, name := range orderedProperties(src.Properties) {
		node.Children = append(node.Children, c.property(name, src.Properties[name]))
	}
	return node
}

func (c *converter) property(name string, ref *openapi3.SchemaRef) schema.Node {
	if ref == nil || ref.Value == nil {
		return schema.Node{Key: name, Kind: schema.KindField}
	}
	if def, ok := componentName(ref.Ref); ok {
		if _, seen := c.definitions[def]; !seen {
			// Reserve the name first so self-referencing components terminate.
			c.definitions[def] = schema.Node{}
			c.definitions[def] = c.node("", ref.Value)
		}
		return schema.Node{Key: name, Ref: "#/definitions/" + def}
	}
	return c.node(name, ref.Value)
}

func (c *converter) node(key string, src *openapi3.Schema) schema.Node {
	if isObject(src) {
		return c.group(key, src)
	}
	return field(key, src)
}

func field(key string, src *openapi3.Schema) schema.Node {
	node := schema.Node{
		Key:     key,
		Kind:    schema.KindField,
		Label:   src.Title,
		Type:    fieldType(src),
		Default: src.Default,
		Help:    src.Description,
		Choices: extensionStrings(src.Extensions, ChoicesExtension),
	}

	constraints := schema.Constraints{Pattern: src.Pattern}
	if src.Min != nil {
		value := *src.Min
		constraints.Min = &value
	}
	if src.Max != nil {
		value := *src.Max
		constraints.Max = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		constraints.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		constraints.MaxLength = &value
	}
	if len(src.Enum) > 0 {
		constraints.Enum = append([]any(nil), src.Enum...)
	}
	if constraints.Min != nil || constraints.Max != nil || constraints.MinLength != nil ||
		constraints.MaxLength != nil || constraints.Pattern != "" || len(constraints.Enum) > 0 {
		node.Constraints = &constraints
	}
	return node
}

func fieldType(src *openapi3.Schema) schema.FieldType {
	switch {
	case src.Type == nil:
		return schema.FieldTypeString
	case src.Type.Is(openapi3.TypeInteger):
		return schema.FieldTypeInteger
	case src.Type.Is(openapi3.TypeNumber):
		return schema.FieldTypeNumber
	case src.Type.Is(openapi3.TypeBoolean):
		return schema.FieldTypeBoolean
	default:
		return schema.FieldTypeString
	}
}

func isObject(src *openapi3.Schema) bool {
	if src == nil {
		return false
	}
	if src.Type != nil && src.Type.Is(openapi3.TypeObject) {
		return true
	}
	return src.Type == nil && len(src.Properties) > 0
}

func orderedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, iok := propertyOrder(props[names[i]])
		oj, jok := propertyOrder(props[names[j]])
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

func propertyOrder(ref *openapi3.SchemaRef) (float64, bool) {
	if ref == nil || ref.Value == nil {
		return 0, false
	}
	switch v := ref.Value.Extensions[OrderExtension].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func extensionStrings(ext map[string]any, key string) []string {
	raw, ok := ext[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func componentName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, componentPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, componentPrefix)
	return name, name != ""
}

func infoTitle(document *openapi3.T) string {
	if document == nil || document.Info == nil {
		return ""
	}
	return document.Info.Title
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
