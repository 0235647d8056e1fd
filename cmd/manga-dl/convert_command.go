package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/model"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var format string
	var deleteAfter bool
	var output string

	cmd := &cobra.Command{
		Use:   "convert <title> <number...>",
		Short: "Convert downloaded chapters to pdf, epub or cbz",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				settings.ConvertFormat = format
			}
			if cmd.Flags().Changed("delete-after") {
				settings.DeleteAfterConversion = deleteAfter
			}
			if output != "" {
				settings.DownloadsPath = output
			}

			numbers, err := parseChapterNumbers(args[1:])
			if err != nil {
				return err
			}

			a, err := ctx.newApp(cmd, settings, progressPrinter(cmd.OutOrStdout(), false))
			if err != nil {
				return err
			}
			defer a.Close()

			conversions, err := a.ConvertChapters(cmd.Context(), args[0], numbers, app.Options{
				Format:      settings.Format(),
				DeleteAfter: settings.DeleteAfterConversion,
			})
			if len(conversions) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderConversions(conversions))
			}
			if err != nil {
				return err
			}

			for _, c := range conversions {
				if c.Err != nil {
					return fmt.Errorf("chapter %s: %w", c.Chapter.Label(), c.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: pdf, epub or cbz (overrides config)")
	cmd.Flags().BoolVar(&deleteAfter, "delete-after", false, "Delete page images after a successful conversion")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Download directory holding the title (overrides config)")

	return cmd
}

func parseChapterNumbers(args []string) ([]float64, error) {
	numbers := make([]float64, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q is not a chapter number", model.ErrInvalidSelection, arg)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}
