package convert

import (
	"errors"
	"fmt"
	"log/slog"

	ioutils "github.com/handiism/manga-downloader/internal/io"
	"github.com/handiism/manga-downloader/internal/logging"
	"github.com/handiism/manga-downloader/internal/model"
)

// ErrNoImages is returned by callers that require an artifact when a
// chapter directory holds no page images. ConvertChapter itself reports
// this case as Result.Skipped.
var ErrNoImages = errors.New("no images to convert")

// CleanupResult describes what the post-conversion cleanup did.
type CleanupResult struct {
	// Removed lists the source image names that were deleted.
	Removed []string

	// DirRemoved is true when the chapter directory was deleted.
	DirRemoved bool

	// DirNotEmpty is true when the directory was kept because other files
	// remain in it, such as a document written next to the pages.
	DirNotEmpty bool

	// Err is set when removing images or the directory failed for any other
	// reason. The artifact is still valid.
	Err error
}

// Result is the outcome of converting one chapter.
type Result struct {
	// Artifact is nil when the chapter was skipped.
	Artifact *model.Artifact

	// Skipped is true when there were no images to convert. Nothing was
	// written in that case.
	Skipped bool

	// Cleanup is nil unless deleteAfter was requested and the artifact was
	// written.
	Cleanup *CleanupResult
}

// Converter packages downloaded chapter images into a single artifact.
//
// Supported formats:
//   - PDF: one page per image at the image's pixel size, inside the chapter directory
//   - EPUB: one section per image, inside the chapter directory
//   - CBZ: images stored unmodified in a zip, next to the chapter directories
//
// Example usage:
//
//	conv := convert.NewConverter("./downloads", logger)
//	res, err := conv.ConvertChapter("Solo Leveling", 1, model.FormatCBZ, true)
//	// res.Artifact.Path == "downloads/Solo_Leveling/Solo_Leveling_Chapter_1.0.cbz"
type Converter struct {
	root   string
	images *ioutils.ImageService
	logger *slog.Logger
}

// NewConverter creates a Converter for the download tree at root.
// logger may be nil.
func NewConverter(root string, logger *slog.Logger) *Converter {
	return &Converter{
		root:   root,
		images: ioutils.NewImageService(),
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// ConvertChapter converts the images of one chapter into format.
//
// Images are the files in the chapter directory with an image extension,
// in lexicographic order. With no images the result is Skipped and the
// filesystem is not touched. The artifact is written atomically: it either
// exists complete or not at all.
//
// When deleteAfter is true and the artifact was written, the converted
// images are removed and the chapter directory is removed if nothing else
// remains in it.
func (c *Converter) ConvertChapter(title string, number float64, format model.Format, deleteAfter bool) (Result, error) {
	if format == model.FormatNone {
		return Result{}, fmt.Errorf("%w: %s", model.ErrUnknownFormat, format)
	}

	label := model.FormatNumber(number)
	dir := ioutils.ChapterDir(c.root, title, number)

	names, err := ioutils.ListPageImages(dir)
	if err != nil {
		return Result{}, fmt.Errorf("list images for chapter %s: %w", label, err)
	}
	if len(names) == 0 {
		c.logger.Info("no images to convert", "chapter", label, "dir", dir)
		return Result{Skipped: true}, nil
	}

	path := ioutils.ArtifactPath(c.root, title, number, format)
	job := job{
		title:  title,
		label:  label,
		dir:    dir,
		names:  names,
		images: c.images,
	}

	err = ioutils.WriteAtomic(path, func(tmp string) error {
		switch format {
		case model.FormatPDF:
			return writePDF(job, tmp)
		case model.FormatEPUB:
			return writeEPUB(job, tmp)
		case model.FormatCBZ:
			return writeCBZ(job, tmp)
		default:
			return fmt.Errorf("%w: %s", model.ErrUnknownFormat, format)
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("create %s for chapter %s: %w", format, label, err)
	}

	c.logger.Info("artifact created", "chapter", label, "format", format.String(), "path", path, "pages", len(names))

	result := Result{
		Artifact: &model.Artifact{
			Format:  format,
			Path:    path,
			Pages:   len(names),
			Sources: names,
		},
	}

	if deleteAfter {
		cleanup := c.cleanup(dir, names)
		result.Cleanup = &cleanup
	}
	return result, nil
}

func (c *Converter) cleanup(dir string, names []string) CleanupResult {
	var result CleanupResult

	removed, err := ioutils.RemoveFiles(dir, names)
	result.Removed = removed
	if err != nil {
		result.Err = err
		c.logger.Warn("cleanup failed", "dir", dir, "error", err)
		return result
	}

	ok, err := ioutils.RemoveDirIfEmpty(dir)
	switch {
	case err != nil:
		result.Err = err
		c.logger.Warn("remove chapter directory failed", "dir", dir, "error", err)
	case ok:
		result.DirRemoved = true
	default:
		result.DirNotEmpty = true
		c.logger.Debug("chapter directory kept, not empty", "dir", dir)
	}
	return result
}

// job carries one chapter's conversion inputs to a format writer.
type job struct {
	title  string
	label  string
	dir    string
	names  []string
	images *ioutils.ImageService
}

func (j job) displayTitle() string {
	return fmt.Sprintf("%s - Chapter %s", j.title, j.label)
}
