package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-configgrid/pkg/chooser"
	"github.com/goliatone/go-configgrid/pkg/tree"
)

func newTreeCmd(a *app) *cobra.Command {
	var (
		statsOnly bool
		hidden    bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "List the fields of the built tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !statsOnly {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PATH\tVALUE\tSOURCE\tCHOICES")
				fmt.Fprintln(w, "----\t-----\t------\t-------")
				for _, leaf := range tree.Collect(result.Tree, tree.KindField) {
					if !hidden && leaf.HasClass(chooser.ClassHidden) {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						leaf.Path, leaf.Value(), leaf.Attr("data-value-source"), strings.Join(leaf.Choices, ","))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "%d containers, %d groups, %d leaves, %d warnings\n",
				result.Stats.Containers, result.Stats.Groups, result.Stats.Leaves, len(result.Warnings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&statsOnly, "stats", false, "Only print node counts")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include fields hidden by the choice")
	return cmd
}
