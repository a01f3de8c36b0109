package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-configgrid/pkg/tree"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the setup and values documents",
		Long: `Validate builds the tree, checks it against its inputs and lists every
value anomaly (unmatched, duplicate or invalid values and missing defaults).
Structural schema errors always fail; warnings fail only with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			// --verify already ran the check inside the build.
			if !a.settings.Verify {
				if err := tree.Verify(result.Schema, result.Store, result.Tree); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(result.Warnings) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KIND\tPATH\tMESSAGE")
				for _, warning := range result.Warnings {
					fmt.Fprintf(w, "%s\t%s\t%s\n", warning.Kind, warning.Path, warning.Message)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "ok: %d fields, %d warnings\n", result.Stats.Leaves, len(result.Warnings))
			if strict && len(result.Warnings) > 0 {
				return fmt.Errorf("%d warnings", len(result.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the build reports warnings")
	return cmd
}
