package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/model"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var chapters string
	var format string
	var deleteAfter bool
	var output string
	var chapterWorkers int
	var imageWorkers int
	var verbose bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download chapters of a manga and optionally convert them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}

			// Apply flags
			if cmd.Flags().Changed("format") {
				settings.ConvertFormat = format
			}
			if cmd.Flags().Changed("delete-after") {
				settings.DeleteAfterConversion = deleteAfter
			}
			if output != "" {
				settings.DownloadsPath = output
			}
			if chapterWorkers > 0 {
				settings.MaxConcurrentChapters = chapterWorkers
			}
			if imageWorkers > 0 {
				settings.MaxConcurrentImages = imageWorkers
			}

			out := cmd.OutOrStdout()
			a, err := ctx.newApp(cmd, settings, progressPrinter(out, verbose))
			if err != nil {
				return err
			}
			defer a.Close()

			manga, err := a.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			selected, err := model.SelectChapters(manga.Chapters, chapters)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintln(out, renderChapters(&model.Manga{Title: manga.Title, URL: manga.URL, Chapters: selected}))
				fmt.Fprintln(out, "\n[Dry run - not downloading]")
				return nil
			}

			report, err := a.Download(cmd.Context(), manga, selected, app.Options{
				Format:      settings.Format(),
				DeleteAfter: settings.DeleteAfterConversion,
			})
			if report.Summary.Chapters != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderReport(report))
			}
			if err != nil {
				return err
			}

			if failed := report.Summary.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d chapters failed", failed, len(report.Summary.Chapters))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chapters, "chapters", "all", `Chapters to download, e.g. "all", "5", "1-10,12.5"`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Convert chapters to pdf, epub, cbz or none (overrides config)")
	cmd.Flags().BoolVar(&deleteAfter, "delete-after", false, "Delete page images after a successful conversion")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().IntVar(&chapterWorkers, "chapter-workers", 0, "Chapters downloaded in parallel (overrides config)")
	cmd.Flags().IntVar(&imageWorkers, "image-workers", 0, "Images downloaded in parallel per chapter (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show retries and other verbose progress")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the selected chapters without downloading")

	return cmd
}
