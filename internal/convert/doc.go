// Package convert packages a downloaded chapter into a single file.
//
// # Formats
//
// PDF and EPUB documents are written inside the chapter directory. CBZ
// archives are written one level up, next to the chapter directories:
//
//	downloads/Title/Chapter_1.0/Title_Chapter_1.0.pdf
//	downloads/Title/Chapter_1.0/Title_Chapter_1.0.epub
//	downloads/Title/Title_Chapter_1.0.cbz
//
// # Cleanup
//
// With deleteAfter set, the converted images are removed and the chapter
// directory is removed when it is empty. A PDF or EPUB lives inside the
// chapter directory, so for those formats the directory is kept and
// CleanupResult.DirNotEmpty is set:
//
//	res, err := conv.ConvertChapter(title, 3, model.FormatPDF, true)
//	if res.Cleanup != nil && res.Cleanup.DirNotEmpty {
//	    // the PDF is still in Chapter_3.0
//	}
package convert
