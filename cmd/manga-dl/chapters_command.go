package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <url>",
		Short: "List the chapters of a manga",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}

			a, err := ctx.newApp(cmd, settings, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			manga, err := a.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d chapters)\n", manga.Title, len(manga.Chapters))
			fmt.Fprintln(out, renderChapters(manga))
			return nil
		},
	}
}
