package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	theme "github.com/goliatone/go-theme"

	configgrid "github.com/goliatone/go-configgrid"
	"github.com/goliatone/go-configgrid/internal/logging"
	"github.com/goliatone/go-configgrid/pkg/loader"
	"github.com/goliatone/go-configgrid/pkg/orchestrator"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

// defaultConfigFile is read from the working directory when --config is not
// given. A missing default file is not an error.
const defaultConfigFile = "configgrid.toml"

const envPrefix = "CONFIGGRID_"

// settings is the merged CLI configuration: file, then environment, then
// flags.
type settings struct {
	Renderer    string `toml:"renderer"`
	ItemType    string `toml:"item_type"`
	Choice      string `toml:"choice"`
	ResultsPath string `toml:"results_path"`
	HTTPTimeout string `toml:"http_timeout"`
	Presets     string `toml:"presets"`
	Verify      bool   `toml:"verify"`

	Setup   string `toml:"setup"`
	Values  string `toml:"values"`
	Meta    string `toml:"meta"`
	Chooser string `toml:"chooser"`

	Format    string `toml:"format"`
	Component string `toml:"component"`
	Title     string `toml:"title"`

	Theme themeSettings `toml:"theme"`
}

type themeSettings struct {
	Name     string                       `toml:"name"`
	Variant  string                       `toml:"variant"`
	Prefix   string                       `toml:"asset_prefix"`
	Tokens   map[string]string            `toml:"tokens"`
	Variants map[string]map[string]string `toml:"variants"`
}

// loadSettings reads path as TOML. When required is false a missing file
// yields zero settings.
func loadSettings(path string, required bool) (settings, error) {
	var s settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return s, nil
		}
		return s, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return s, nil
}

// envMapping maps environment variables to the settings they override.
func envMapping(s *settings) map[string]*string {
	return map[string]*string{
		envPrefix + "RENDERER":      &s.Renderer,
		envPrefix + "ITEM_TYPE":     &s.ItemType,
		envPrefix + "CHOICE":        &s.Choice,
		envPrefix + "RESULTS_PATH":  &s.ResultsPath,
		envPrefix + "HTTP_TIMEOUT":  &s.HTTPTimeout,
		envPrefix + "PRESETS":       &s.Presets,
		envPrefix + "SETUP":         &s.Setup,
		envPrefix + "VALUES":        &s.Values,
		envPrefix + "META":          &s.Meta,
		envPrefix + "CHOOSER":       &s.Chooser,
		envPrefix + "FORMAT":        &s.Format,
		envPrefix + "COMPONENT":     &s.Component,
		envPrefix + "THEME":         &s.Theme.Name,
		envPrefix + "THEME_VARIANT": &s.Theme.Variant,
	}
}

// applyEnv overrides settings from CONFIGGRID_* variables. Empty values count
// as set.
func (s *settings) applyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, target := range envMapping(s) {
		if value, ok := lookup(name); ok {
			*target = value
		}
	}
	if value, ok := lookup(envPrefix + "VERIFY"); ok {
		s.Verify = parseBool(value)
	}
}

// flagBindings maps persistent flag names to the settings they override.
func flagBindings(s *settings) map[string]*string {
	return map[string]*string{
		"setup":        &s.Setup,
		"values":       &s.Values,
		"meta":         &s.Meta,
		"chooser":      &s.Chooser,
		"choice":       &s.Choice,
		"item-type":    &s.ItemType,
		"results-path": &s.ResultsPath,
		"format":       &s.Format,
		"component":    &s.Component,
		"title":        &s.Title,
		"presets":      &s.Presets,
		"http-timeout": &s.HTTPTimeout,
		"renderer":     &s.Renderer,
		"theme":        &s.Theme.Name,
		"variant":      &s.Theme.Variant,
	}
}

// applyFlags copies every flag the user set explicitly.
func (s *settings) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for name, target := range flagBindings(s) {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		*target = flag.Value.String()
	}
	if flag := flags.Lookup("verify"); flag != nil && flag.Changed {
		verify, err := flags.GetBool("verify")
		if err != nil {
			return err
		}
		s.Verify = verify
	}
	return nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// config turns the document locations into an orchestrator config.
func (s settings) config() (orchestrator.Config, error) {
	cfg := orchestrator.Config{
		Choice:    s.Choice,
		ItemType:  tree.ItemType(s.ItemType),
		Format:    s.Format,
		Component: s.Component,
		Title:     s.Title,
	}
	if strings.TrimSpace(s.Setup) == "" {
		return cfg, errors.New("a setup document is required (--setup or setup in configgrid.toml)")
	}

	targets := []struct {
		location string
		dst      *loader.Source
	}{
		{s.Setup, &cfg.Setup},
		{s.Values, &cfg.Values},
		{s.Meta, &cfg.Meta},
		{s.Chooser, &cfg.Chooser},
	}
	for _, target := range targets {
		if strings.TrimSpace(target.location) == "" {
			continue
		}
		src, err := loader.ParseSource(target.location)
		if err != nil {
			return cfg, err
		}
		*target.dst = src
	}
	return cfg, nil
}

// options builds the orchestrator options for these settings.
func (s settings) options() ([]orchestrator.Option, error) {
	var loaderOptions []loader.Option
	if s.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(s.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid http_timeout %q: %w", s.HTTPTimeout, err)
		}
		loaderOptions = append(loaderOptions, loader.WithHTTP(timeout))
	}

	opts := []orchestrator.Option{
		orchestrator.WithLoader(configgrid.NewLoader(loaderOptions...)),
		orchestrator.WithLogger(logging.Logger),
		orchestrator.WithContractCheck(s.Verify),
	}
	if s.ResultsPath != "" {
		opts = append(opts, orchestrator.WithResultsPath(s.ResultsPath))
	}
	if s.Renderer != "" {
		opts = append(opts, orchestrator.WithDefaultRenderer(s.Renderer))
	}
	if s.Presets != "" {
		data, err := os.ReadFile(s.Presets)
		if err != nil {
			return nil, fmt.Errorf("reading presets %s: %w", s.Presets, err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithTransformers(preset))
	}
	if selector, err := s.Theme.selector(); err != nil {
		return nil, err
	} else if selector != nil {
		opts = append(opts, orchestrator.WithThemeSelector(selector))
	}
	return opts, nil
}

// selector returns nil when no theme is configured.
func (t themeSettings) selector() (theme.ThemeSelector, error) {
	if t.Name == "" && len(t.Tokens) == 0 {
		return nil, nil
	}
	name := t.Name
	if name == "" {
		name = "default"
	}
	manifest := &theme.Manifest{
		Name:   name,
		Tokens: t.Tokens,
		Assets: theme.Assets{Prefix: t.Prefix},
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for variant, tokens := range t.Variants {
			manifest.Variants[variant] = theme.Variant{Tokens: tokens}
		}
	}
	selector, err := orchestrator.NewManifestSelector(name, t.Variant, manifest)
	if err != nil {
		return nil, err
	}
	return selector, nil
}
