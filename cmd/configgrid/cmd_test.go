package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-configgrid/pkg/editor"
	"github.com/goliatone/go-configgrid/pkg/testsupport"
)

// scriptedDriver answers prompts from fixed scripts.
type scriptedDriver struct {
	selects []int
	inputs  []string
	infos   []string
}

func (d *scriptedDriver) Input(context.Context, editor.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	value := d.inputs[0]
	d.inputs = d.inputs[1:]
	return value, nil
}

func (d *scriptedDriver) Confirm(context.Context, editor.ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (d *scriptedDriver) Select(context.Context, editor.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	idx := d.selects[0]
	d.selects = d.selects[1:]
	return idx, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

// runCLI executes the command tree with args and returns stdout.
func runCLI(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a == nil {
		a = &app{}
	}
	if a.lookupEnv == nil {
		a.lookupEnv = func(string) (string, bool) { return "", false }
	}
	cmd := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func fixtureArgs() []string {
	return []string{
		"--setup", testsupport.FixturePath(testsupport.SetupFixture),
		"--values", testsupport.FixturePath(testsupport.ValuesFixture),
		"--meta", testsupport.FixturePath(testsupport.MetaFixture),
	}
}

func TestTreeCommand_Stats(t *testing.T) {
	out, err := runCLI(t, nil, append([]string{"tree", "--stats"}, fixtureArgs()...)...)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "65 containers") || !strings.Contains(out, "173 leaves") {
		t.Fatalf("unexpected stats output %q", out)
	}
	if strings.Contains(out, "PATH") {
		t.Fatalf("--stats should skip the field table")
	}
}

func TestTreeCommand_ListsFields(t *testing.T) {
	out, err := runCLI(t, nil, append([]string{"tree"}, fixtureArgs()...)...)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{"PATH", "server/modelNumber", "2.2.0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTreeCommand_ChoiceHidesFields(t *testing.T) {
	args := []string{
		"tree",
		"--setup", testsupport.FixturePath(testsupport.SetupFixture),
		"--chooser", testsupport.FixturePath(testsupport.ChooserFixture),
		"--choice", "minimal",
	}
	out, err := runCLI(t, nil, args...)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "3 containers") || !strings.Contains(out, "5 leaves") {
		t.Fatalf("expected the minimal setup, got %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := runCLI(t, nil, append([]string{"render", "--renderer", "json"}, fixtureArgs()...)...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !gjson.Valid(out) {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, "grb_line__server_modelNumber") {
		t.Fatalf("expected model number line in output")
	}

	target := filepath.Join(t.TempDir(), "tree.html")
	out, err = runCLI(t, nil, append([]string{"render", "-o", target}, fixtureArgs()...)...)
	if err != nil {
		t.Fatalf("render to file: %v", err)
	}
	if out != "" {
		t.Fatalf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `id="grb_value__server_modelNumber"`) {
		t.Fatalf("expected html output in %s", target)
	}
}

func TestRenderCommand_ConfigFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "configgrid.toml")
	body := "renderer = \"text\"\nsetup = \"" + filepath.ToSlash(testsupport.FixturePath(testsupport.MinimalFixture)) + "\"\n"
	if err := os.WriteFile(config, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runCLI(t, nil, "render", "--config", config); err != nil {
		t.Fatalf("render with config: %v", err)
	}

	if _, err := runCLI(t, nil, "render"); err == nil {
		t.Fatalf("expected error without setup")
	}
	if _, err := runCLI(t, nil, "render", "--config", filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
	_, err := runCLI(t, nil, "render", "--renderer", "pdf", "--setup", testsupport.FixturePath(testsupport.MinimalFixture))
	if err == nil || !strings.Contains(err.Error(), "pdf") {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
}

func TestRenderCommand_EnvOverridesConfig(t *testing.T) {
	a := &app{lookupEnv: func(name string) (string, bool) {
		switch name {
		case "CONFIGGRID_SETUP":
			return testsupport.FixturePath(testsupport.MinimalFixture), true
		case "CONFIGGRID_RENDERER":
			return "json", true
		}
		return "", false
	}}
	out, err := runCLI(t, a, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !gjson.Valid(out) {
		t.Fatalf("expected json renderer from env, got %q", out)
	}

	out, err = runCLI(t, a, "render", "--renderer", "text")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if gjson.Valid(out) {
		t.Fatalf("expected flag to override env renderer")
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, nil, append([]string{"validate", "--verify"}, fixtureArgs()...)...)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "ok: 173 fields") {
		t.Fatalf("unexpected validate output %q", out)
	}

	dir := t.TempDir()
	setup := filepath.Join(dir, "setup.json")
	valuesDoc := filepath.Join(dir, "values.json")
	writeFile(t, setup, `{"config":[{"key":"port","type":"integer","default":1}]}`)
	writeFile(t, valuesDoc, `{"values":[{"item":"/port","value":"2"},{"item":"/ghost","value":"x"}]}`)

	out, err = runCLI(t, nil, "validate", "--setup", setup, "--values", valuesDoc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "ghost") {
		t.Fatalf("expected unmatched value warning, got %q", out)
	}
	if _, err := runCLI(t, nil, "validate", "--strict", "--setup", setup, "--values", valuesDoc); err == nil {
		t.Fatalf("expected --strict to fail on warnings")
	}

	writeFile(t, setup, `{"config":[{"key":"a"},{"key":"a"}]}`)
	if _, err := runCLI(t, nil, "validate", "--setup", setup); err == nil {
		t.Fatalf("expected structural schema error")
	}
}

func TestEditCommand(t *testing.T) {
	setup := testsupport.FixturePath(testsupport.MinimalFixture)

	driver := &scriptedDriver{selects: []int{0, 0, 99}, inputs: []string{"8080"}}
	out, err := runCLI(t, &app{driver: driver}, "edit", "--setup", setup)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	changes := gjson.Get(out, "changes")
	if len(changes.Array()) != 1 {
		t.Fatalf("expected one change, got %q", out)
	}
	if item := changes.Get("0.item").String(); item != "/server/port" {
		t.Fatalf("unexpected item %q", item)
	}
	if value := changes.Get("0.value").Int(); value != 8080 {
		t.Fatalf("unexpected value %d", value)
	}

	idle := &scriptedDriver{selects: []int{99}}
	out, err = runCLI(t, &app{driver: idle}, "edit", "--setup", setup)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no payload without changes, got %q", out)
	}
	if len(idle.infos) != 1 {
		t.Fatalf("expected the summary message, got %v", idle.infos)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
