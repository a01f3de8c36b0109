package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/values"
)

// ItemType namespaces leaf classes: leaves render as li.grb-<ItemType>.
type ItemType string

const (
	ItemTypeConfig ItemType = "config"
	ItemTypeValues ItemType = "values"
)

// Class returns the leaf class for the item type.
func (t ItemType) Class() string {
	return "grb-" + string(t.orDefault())
}

func (t ItemType) orDefault() ItemType {
	if strings.TrimSpace(string(t)) == "" {
		return ItemTypeConfig
	}
	return ItemType(strings.ToLower(strings.TrimSpace(string(t))))
}

// ValueSource records where a field's seeded value came from.
type ValueSource string

const (
	SourceValue       ValueSource = "value"
	SourceDefault     ValueSource = "default"
	SourceMetaDefault ValueSource = "meta-default"
	SourceNone        ValueSource = "none"
)

// Option customises a Builder.
type Option func(*Builder)

// WithLabeler overrides the key-to-caption function.
func WithLabeler(labeler Labeler) Option {
	return func(b *Builder) {
		if labeler != nil {
			b.labeler = labeler
		}
	}
}

// WithItemType sets the leaf class namespace. ItemTypeValues renders inputs
// read-only.
func WithItemType(itemType ItemType) Option {
	return func(b *Builder) {
		b.itemType = itemType.orDefault()
	}
}

// WithWarningHandler registers a callback for resolution warnings.
func WithWarningHandler(handler WarningHandler) Option {
	return func(b *Builder) {
		b.onWarning = handler
	}
}

// WithoutValidation disables constraint checks on seeded values.
func WithoutValidation() Option {
	return func(b *Builder) {
		b.validate = false
	}
}

// Builder turns a schema plus current values into a render tree. A Builder
// holds no per-build state and may be shared across goroutines.
type Builder struct {
	labeler   Labeler
	itemType  ItemType
	onWarning WarningHandler
	validate  bool
}

// New constructs a Builder.
func New(options ...Option) *Builder {
	b := &Builder{
		labeler:  DefaultLabeler,
		itemType: ItemTypeConfig,
		validate: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// ItemType reports the configured item type.
func (b *Builder) ItemType() ItemType {
	return b.itemType
}

// Build resolves the schema and emits the render tree. Warnings go to the
// registered handler.
func (b *Builder) Build(s schema.Schema, store *values.Store) (Node, error) {
	root, _, err := b.BuildWithWarnings(s, store)
	return root, err
}

// BuildWithWarnings is Build that also returns the warnings it produced.
func (b *Builder) BuildWithWarnings(s schema.Schema, store *values.Store) (Node, []Warning, error) {
	resolved, err := schema.Resolve(s)
	if err != nil {
		return Node{}, nil, fmt.Errorf("tree: build: %w", err)
	}

	state := &buildState{
		builder: b,
		store:   store,
		matched: make(map[string]struct{}),
	}
	for _, path := range store.Duplicates() {
		state.warn(WarningDuplicateValue, path, "later entry ignored")
	}

	root := state.container(resolved, "")
	root.AddClass(ClassRoot)
	if resolved.Label != "" {
		root.SetAttr("data-title", resolved.Label)
	}

	for _, entry := range store.Entries() {
		if _, ok := state.matched[entry.Path]; ok {
			continue
		}
		state.warn(WarningUnmatchedValue, entry.Path, "no field declared for value")
	}

	return root, state.warnings, nil
}

type buildState struct {
	builder  *Builder
	store    *values.Store
	matched  map[string]struct{}
	warnings []Warning
}

func (s *buildState) warn(kind WarningKind, path, message string) {
	w := Warning{Kind: kind, Path: path, Message: message}
	s.warnings = append(s.warnings, w)
	if s.builder.onWarning != nil {
		s.builder.onWarning(w)
	}
}

func (s *buildState) container(group schema.Node, path string) Node {
	list := Node{
		ID:      ListID(path),
		Kind:    KindContainer,
		Element: "ul",
		Path:    path,
	}
	list.AddClass(ClassList)
	for _, child := range group.Children {
		childPath := schema.JoinPath(path, child.Key)
		if child.Kind == schema.KindGroup {
			list.Children = append(list.Children, s.group(child, childPath))
			continue
		}
		list.Children = append(list.Children, s.field(child, childPath))
	}
	return list
}

func (s *buildState) group(node schema.Node, path string) Node {
	item := Node{
		ID:      GroupID(path),
		Kind:    KindGroup,
		Element: "li",
		Path:    path,
		Choices: copyChoices(node.Choices),
	}
	item.AddClass(ClassGroup)
	item.SetAttr("data-path", path)
	item.SetAttr("data-choices", strings.Join(node.Choices, " "))

	caption := Node{Kind: KindCaption, Element: "span", Text: s.label(node)}
	caption.AddClass(ClassCaption)
	item.Children = append(item.Children, caption)
	if help := strings.TrimSpace(node.Help); help != "" {
		item.Children = append(item.Children, helpNode(help))
	}
	item.Children = append(item.Children, s.container(node, path))
	return item
}

func (s *buildState) field(node schema.Node, path string) Node {
	entry, hasEntry := s.store.Lookup(path)
	if hasEntry {
		s.matched[entry.Path] = struct{}{}
	}
	value, source := ResolveValue(node, path, s.store)
	if source == SourceNone {
		s.warn(WarningMissingDefault, path, "no value or default; seeded empty")
	}

	fieldType := node.FieldTypeOf()
	itemType := s.builder.itemType

	item := Node{
		ID:      LineID(path),
		Kind:    KindField,
		Element: "li",
		Path:    path,
		Choices: copyChoices(node.Choices),
	}
	item.AddClass(itemType.Class())
	item.SetAttr("data-path", path)
	item.SetAttr("data-type", string(fieldType))
	item.SetAttr("data-choices", strings.Join(node.Choices, " "))
	item.SetAttr("data-value-source", string(source))

	description := strings.TrimSpace(node.Help)
	if hasEntry {
		item.SetAttr("data-source", entry.Meta.Source)
		if status := entry.Meta.Status; status != "" && status != values.StatusUnchanged {
			item.AddClass(ClassStatusPrefix + string(status))
		}
		if description == "" {
			description = strings.TrimSpace(entry.Meta.Description)
		}
	}

	label := Node{Kind: KindLabel, Element: "label", Text: s.label(node)}
	label.AddClass(ClassLabel)
	label.SetAttr("for", ValueID(path))

	input := Node{
		ID:      ValueID(path),
		Kind:    KindInput,
		Element: "input",
		Path:    path,
	}
	input.AddClass(ClassInput)
	input.SetAttr("name", "/"+path)
	input.SetAttr("type", inputType(fieldType))
	input.SetAttr("value", value)
	if fieldType == schema.FieldTypeBoolean {
		if checked, err := strconv.ParseBool(value); err == nil && checked {
			input.SetAttr("checked", "checked")
		}
	}
	if itemType == ItemTypeValues {
		input.SetAttr("readonly", "readonly")
	}
	applyConstraintAttrs(&input, node.Constraints)

	if s.builder.validate {
		if err := node.Constraints.Check(value, fieldType); err != nil {
			item.AddClass(ClassInvalid)
			input.SetAttr("data-error", err.Error())
			input.SetAttr("aria-invalid", "true")
			s.warn(WarningInvalidValue, path, err.Error())
		}
	}

	item.Children = append(item.Children, label, input)
	if description != "" {
		item.Children = append(item.Children, helpNode(description))
	}
	return item
}

func (s *buildState) label(node schema.Node) string {
	if label := strings.TrimSpace(node.Label); label != "" {
		return label
	}
	return s.builder.labeler(node.Key)
}

// ResolveValue returns the value a field is seeded with: the entry value,
// then the schema default, then the entry's reported default, then "".
func ResolveValue(field schema.Node, path string, store *values.Store) (string, ValueSource) {
	entry, ok := store.Lookup(path)
	if ok && entry.HasValue() {
		return values.FormatValue(entry.Value), SourceValue
	}
	if field.Default != nil {
		return values.FormatValue(field.Default), SourceDefault
	}
	if ok && entry.Meta.Default != nil {
		return values.FormatValue(entry.Meta.Default), SourceMetaDefault
	}
	return "", SourceNone
}

func helpNode(text string) Node {
	help := Node{Kind: KindHelp, Element: "p", Text: text}
	help.AddClass(ClassHelp)
	return help
}

func inputType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeInteger, schema.FieldTypeNumber:
		return "number"
	case schema.FieldTypeBoolean:
		return "checkbox"
	default:
		return "text"
	}
}

func applyConstraintAttrs(input *Node, c *schema.Constraints) {
	if c == nil {
		return
	}
	if c.Min != nil {
		input.SetAttr("min", strconv.FormatFloat(*c.Min, 'f', -1, 64))
	}
	if c.Max != nil {
		input.SetAttr("max", strconv.FormatFloat(*c.Max, 'f', -1, 64))
	}
	if c.MinLength != nil {
		input.SetAttr("minlength", strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		input.SetAttr("maxlength", strconv.Itoa(*c.MaxLength))
	}
	input.SetAttr("pattern", c.Pattern)
	if len(c.Enum) > 0 {
		options := make([]string, len(c.Enum))
		for i, option := range c.Enum {
			options[i] = values.FormatValue(option)
		}
		input.SetAttr("data-options", strings.Join(options, "|"))
	}
}

func copyChoices(choices []string) []string {
	if len(choices) == 0 {
		return nil
	}
	return append([]string(nil), choices...)
}
