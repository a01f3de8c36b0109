package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-configgrid/internal/logging"
	"github.com/goliatone/go-configgrid/pkg/changes"
	"github.com/goliatone/go-configgrid/pkg/editor"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		output string
		hidden bool
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit values interactively and print the change payload",
		Long: `Edit walks the fields of the built tree with interactive prompts. Each
set, reset or removal is recorded against the loaded values; on exit the
pending changes are printed as a JSON payload ready to post to the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.build(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := changes.NewRecorder(result.Store, changes.WithSchema(result.Schema))
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = editor.NewSurveyDriver(cmd.OutOrStdout())
			}
			ed := editor.New(driver, editor.WithSchema(result.Schema), editor.WithHidden(hidden))
			if err := ed.Edit(cmd.Context(), result.Tree, rec); err != nil {
				return err
			}

			if rec.Len() == 0 {
				logging.Info("no changes recorded")
				return nil
			}
			payload, err := rec.Payload()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, append(payload, '\n'))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the change payload to a file")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Offer fields hidden by the choice")
	return cmd
}
