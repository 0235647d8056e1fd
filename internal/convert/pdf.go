package convert

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// writePDF writes one page per image, each page sized to the image with
// one pixel mapped to one point.
func writePDF(j job, path string) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(j.displayTitle(), true)
	pdf.SetCreator("manga-downloader", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, name := range j.names {
		page, err := j.images.LoadPage(filepath.Join(j.dir, name))
		if err != nil {
			return fmt.Errorf("page %s: %w", name, err)
		}

		w, h := float64(page.Width), float64(page.Height)
		opts := fpdf.ImageOptions{ImageType: pdfImageType(page.Format)}
		imageName := fmt.Sprintf("page-%04d", i+1)

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(page.Data))
		pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return fmt.Errorf("page %s: %w", name, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func pdfImageType(format string) string {
	if format == "jpeg" {
		return "JPG"
	}
	return "PNG"
}
