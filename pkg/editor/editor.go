package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-configgrid/pkg/changes"
	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

const (
	doneOption = "Done"

	actionSet    = "Set value"
	actionReset  = "Reset to default"
	actionRemove = "Remove value"
	actionBack   = "Back"
)

// Option configures an Editor.
type Option func(*Editor)

// WithSchema enables prompt-time validation against field constraints.
func WithSchema(s schema.Schema) Option {
	return func(e *Editor) {
		e.schema = &s
	}
}

// WithHidden offers fields the active choice marks hidden.
func WithHidden(enabled bool) Option {
	return func(e *Editor) {
		e.showHidden = enabled
	}
}

// WithPageSize sets how many fields the picker shows at once.
func WithPageSize(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// Editor walks a render tree interactively and records edits on a
// changes.Recorder.
type Editor struct {
	driver     PromptDriver
	schema     *schema.Schema
	showHidden bool
	pageSize   int
}

// New constructs an Editor around driver.
func New(driver PromptDriver, options ...Option) *Editor {
	e := &Editor{driver: driver, pageSize: 15}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

type field struct {
	path   string
	label  string
	help   string
	value  string
	kind   schema.FieldType
	opts   []string
	schema *schema.Node
}

// Edit loops over a field picker until the user selects Done. Every accepted
// edit is recorded on rec; the tree itself is not modified.
func (e *Editor) Edit(ctx context.Context, root tree.Node, rec *changes.Recorder) error {
	if e.driver == nil {
		return errors.New("editor: prompt driver is nil")
	}
	if rec == nil {
		return errors.New("editor: recorder is nil")
	}

	fields, err := e.fields(root)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return e.driver.Info(ctx, "No editable fields.")
	}

	options := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		options = append(options, fmt.Sprintf("%s (%s)", f.label, f.path))
	}
	options = append(options, doneOption)

	last := 0
	for {
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      "Select a field",
			Options:      options,
			DefaultIndex: last,
			PageSize:     e.pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(fields) {
			return e.driver.Info(ctx, summary(rec))
		}
		last = idx
		if err := e.editField(ctx, &fields[idx], rec); err != nil {
			return err
		}
	}
}

func (e *Editor) editField(ctx context.Context, f *field, rec *changes.Recorder) error {
	actions := []string{actionSet, actionReset, actionRemove, actionBack}
	choice, err := e.driver.Select(ctx, SelectConfig{
		Message: fmt.Sprintf("%s = %q", f.label, f.value),
		Options: actions,
		Help:    f.help,
	})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(actions) {
		return nil
	}

	var change changes.Change
	switch actions[choice] {
	case actionSet:
		value, err := e.prompt(ctx, f)
		if err != nil {
			return err
		}
		change, err = rec.Set(f.path, typed(value, f.kind))
		if err != nil {
			return e.driver.Info(ctx, err.Error())
		}
		f.value = value
	case actionReset:
		change, err = rec.Reset(f.path)
	case actionRemove:
		change, err = rec.Remove(f.path)
	default:
		return nil
	}
	if err != nil {
		return e.driver.Info(ctx, err.Error())
	}
	return e.driver.Info(ctx, fmt.Sprintf("%s: %s", change.Status, f.path))
}

func (e *Editor) prompt(ctx context.Context, f *field) (string, error) {
	switch {
	case f.kind == schema.FieldTypeBoolean:
		current, _ := strconv.ParseBool(f.value)
		ok, err := e.driver.Confirm(ctx, ConfirmConfig{Message: f.label, Default: current, Help: f.help})
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(ok), nil
	case len(f.opts) > 0:
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      f.label,
			Options:      f.opts,
			DefaultIndex: indexOf(f.opts, f.value),
			Help:         f.help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(f.opts) {
			return f.value, nil
		}
		return f.opts[idx], nil
	default:
		return e.driver.Input(ctx, InputConfig{
			Message:   f.label,
			Default:   f.value,
			Help:      f.help,
			Validator: validator(f),
		})
	}
}

// typed converts prompt input to the value kind the field declares so the
// change payload carries numbers and booleans rather than strings.
func typed(value string, kind schema.FieldType) any {
	trimmed := strings.TrimSpace(value)
	switch kind {
	case schema.FieldTypeInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	case schema.FieldTypeNumber:
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
	case schema.FieldTypeBoolean:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	}
	return value
}

func validator(f *field) func(string) error {
	constraints := &schema.Constraints{}
	kind := f.kind
	if f.schema != nil {
		if f.schema.Constraints != nil {
			constraints = f.schema.Constraints
		}
		kind = f.schema.FieldTypeOf()
	}
	if kind == schema.FieldTypeString && f.schema == nil {
		return nil
	}
	return func(value string) error {
		return constraints.Check(strings.TrimSpace(value), kind)
	}
}

func (e *Editor) fields(root tree.Node) ([]field, error) {
	var nodes map[string]schema.Node
	if e.schema != nil {
		resolved, err := schema.Resolve(*e.schema)
		if err != nil {
			return nil, fmt.Errorf("editor: resolve schema: %w", err)
		}
		nodes = make(map[string]schema.Node)
		schema.Walk(resolved, func(path string, node schema.Node) {
			if path != "" && !node.IsGroup() {
				nodes[path] = node
			}
		})
	}

	var out []field
	tree.Walk(root, func(node tree.Node) bool {
		if !e.showHidden && node.HasClass(chooser.ClassHidden) {
			return false
		}
		if node.Kind != tree.KindField {
			return true
		}
		f := field{
			path:  node.Path,
			value: node.Value(),
			kind:  schema.FieldType(node.Attr("data-type")),
		}
		for _, child := range node.Children {
			switch child.Kind {
			case tree.KindLabel:
				f.label = child.Text
			case tree.KindHelp:
				f.help = child.Text
			case tree.KindInput:
				if raw := child.Attr("data-options"); raw != "" {
					f.opts = strings.Split(raw, "|")
				}
			}
		}
		if n, ok := nodes[node.Path]; ok {
			f.schema = &n
		}
		out = append(out, f)
		return false
	})
	return out, nil
}

func summary(rec *changes.Recorder) string {
	pending := rec.Changes()
	if len(pending) == 0 {
		return "No changes."
	}
	lines := make([]string, 0, len(pending)+1)
	lines = append(lines, fmt.Sprintf("%d pending change(s):", len(pending)))
	for _, change := range pending {
		lines = append(lines, fmt.Sprintf("  %-8s /%s", change.Status, change.Path))
	}
	return strings.Join(lines, "\n")
}
