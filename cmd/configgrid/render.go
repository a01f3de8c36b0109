package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-configgrid/internal/logging"
	"github.com/goliatone/go-configgrid/internal/watch"
	"github.com/goliatone/go-configgrid/pkg/loader"
	"github.com/goliatone/go-configgrid/pkg/orchestrator"
	"github.com/goliatone/go-configgrid/pkg/render"
)

type renderFlags struct {
	output     string
	filter     bool
	watch      bool
	errorsFile string
	paths      []string
	types      []string
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configuration tree",
		Long: `Render builds the tree and emits it with the selected renderer
(html, text or json). With --watch the output is rebuilt whenever a local
input document changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, f)
		},
	}

	cmd.Flags().StringP("renderer", "r", "", "Renderer name (html, text, json)")
	cmd.Flags().String("theme", "", "Theme name")
	cmd.Flags().String("variant", "", "Theme variant")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&f.filter, "filter", false, "Drop nodes hidden by the choice instead of marking them")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Re-render when local inputs change")
	cmd.Flags().StringVar(&f.errorsFile, "errors", "", "Backend error payload (JSON or YAML map of path to messages)")
	cmd.Flags().StringSliceVar(&f.paths, "path", nil, "Only render these subtrees")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "Only render leaves of these field types")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, f renderFlags) error {
	cfg, err := a.settings.config()
	if err != nil {
		return err
	}

	// generate rebuilds the orchestrator so preset and error files are reread
	// on every pass.
	generate := func(ctx context.Context) error {
		orch, req, err := renderRequest(a, f)
		if err != nil {
			return err
		}
		out, err := orch.Generate(ctx, req)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), f.output, out)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := generate(ctx); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}

	files := localFiles(cfg, a.settings.Presets, f.errorsFile)
	if len(files) == 0 {
		return fmt.Errorf("--watch needs at least one local input file")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logging.Info("watching for changes", "files", len(files))
	return watch.Run(ctx, files, func(path string) {
		logging.Info("input changed, re-rendering", "path", path)
		if err := generate(ctx); err != nil {
			logging.Error("render failed", "error", err)
		}
	}, watch.WithErrorHandler(func(err error) {
		logging.Warn("watch error", "error", err)
	}))
}

func renderRequest(a *app, f renderFlags) (*orchestrator.Orchestrator, orchestrator.Request, error) {
	orch, cfg, err := a.orchestrator()
	if err != nil {
		return nil, orchestrator.Request{}, err
	}
	cfg.Filter = f.filter

	req := orchestrator.Request{
		Config:       cfg,
		Renderer:     a.settings.Renderer,
		ThemeName:    a.settings.Theme.Name,
		ThemeVariant: a.settings.Theme.Variant,
		RenderOptions: render.RenderOptions{
			Subset: render.FieldSubset{Paths: f.paths, Types: f.types},
		},
	}
	if f.errorsFile != "" {
		payload, err := readErrorPayload(f.errorsFile)
		if err != nil {
			return nil, req, err
		}
		req.RenderOptions.Errors = payload
	}
	return orch, req, nil
}

// readErrorPayload decodes a JSON or YAML object mapping paths to messages.
func readErrorPayload(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading errors %s: %w", path, err)
	}
	var payload map[string][]string
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing errors %s: %w", path, err)
	}
	return payload, nil
}

// localFiles lists the file-backed inputs of cfg plus any extra paths.
func localFiles(cfg orchestrator.Config, extra ...string) []string {
	var files []string
	for _, src := range []loader.Source{cfg.Setup, cfg.Values, cfg.Meta, cfg.Chooser} {
		if src != nil && src.Kind() == loader.SourceKindFile {
			files = append(files, src.Location())
		}
	}
	for _, path := range extra {
		if path != "" {
			files = append(files, path)
		}
	}
	return files
}
