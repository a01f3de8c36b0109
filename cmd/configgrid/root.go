package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-configgrid/internal/logging"
	"github.com/goliatone/go-configgrid/pkg/editor"
	"github.com/goliatone/go-configgrid/pkg/orchestrator"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	verbose    bool
	jsonOutput bool
	configPath string
	settings   settings
	lookupEnv  func(string) (string, bool)
	// driver replaces the survey prompts of the edit command when set.
	driver editor.PromptDriver
}

func newRootCmd(a *app) *cobra.Command {
	if a == nil {
		a = &app{}
	}
	if a.lookupEnv == nil {
		a.lookupEnv = os.LookupEnv
	}

	rootCmd := &cobra.Command{
		Use:   "configgrid",
		Short: "Render Gerbera configuration trees",
		Long: `configgrid renders the configuration tree described by a setup schema,
seeded from the values a Gerbera server reports.

Documents may be local files or http(s) URLs:
  - setup: the schema (JSON, YAML or an OpenAPI component)
  - values and meta: server responses (JSON, YAML or TOML)
  - chooser: choice profiles that mark or filter the tree`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(a.verbose, a.jsonOutput, cmd.ErrOrStderr())
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&a.jsonOutput, "json", false, "Output logs in JSON format")
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default ./"+defaultConfigFile+")")
	flags.String("setup", "", "Setup schema document")
	flags.String("values", "", "Values document")
	flags.String("meta", "", "Meta document")
	flags.String("chooser", "", "Choice profiles document")
	flags.String("choice", "", "Active choice profile id")
	flags.String("item-type", "", "Leaf class namespace (config or values)")
	flags.String("results-path", "", "gjson path to the values payload")
	flags.String("format", "", "Force a schema adapter (configgrid or openapi)")
	flags.String("component", "", "OpenAPI component schema to import")
	flags.String("title", "", "Override the tree title")
	flags.String("presets", "", "Preset document patching labels and help")
	flags.String("http-timeout", "", "Enable URL sources with this timeout (e.g. 10s)")
	flags.Bool("verify", false, "Check the built tree against its inputs")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRenderCmd(a),
		newTreeCmd(a),
		newValidateCmd(a),
		newEditCmd(a),
	)
	return rootCmd
}

// load merges the config file, environment and flags into a.settings.
func (a *app) load(cmd *cobra.Command) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = defaultConfigFile, false
	}
	s, err := loadSettings(path, required)
	if err != nil {
		return err
	}
	s.applyEnv(a.lookupEnv)
	if err := s.applyFlags(cmd); err != nil {
		return err
	}
	a.settings = s
	logging.Debug("settings loaded", "config", path, "setup", s.Setup, "renderer", s.Renderer)
	return nil
}

// orchestrator returns an orchestrator and build config for the current
// settings.
func (a *app) orchestrator() (*orchestrator.Orchestrator, orchestrator.Config, error) {
	cfg, err := a.settings.config()
	if err != nil {
		return nil, cfg, err
	}
	opts, err := a.settings.options()
	if err != nil {
		return nil, cfg, err
	}
	return orchestrator.New(opts...), cfg, nil
}

// build runs the orchestrator build for the current settings.
func (a *app) build(ctx context.Context) (orchestrator.Result, error) {
	orch, cfg, err := a.orchestrator()
	if err != nil {
		return orchestrator.Result{}, err
	}
	return orch.Build(ctx, cfg)
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logging.Info("output written", "path", path, "bytes", len(data))
	return nil
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd(nil).Execute()
}
