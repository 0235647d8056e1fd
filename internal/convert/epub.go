package convert

import (
	"fmt"
	"path/filepath"

	"github.com/go-shiori/go-epub"
)

// writeEPUB writes one section per image, in page order.
func writeEPUB(j job, path string) error {
	e, err := epub.NewEpub(j.displayTitle())
	if err != nil {
		return fmt.Errorf("create epub: %w", err)
	}
	e.SetLang("en")

	for i, name := range j.names {
		internalPath, err := e.AddImage(filepath.Join(j.dir, name), name)
		if err != nil {
			return fmt.Errorf("add image %s: %w", name, err)
		}

		body := fmt.Sprintf(`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`, internalPath, i+1)
		if _, err := e.AddSection(body, fmt.Sprintf("Page %d", i+1), "", ""); err != nil {
			return fmt.Errorf("add section for %s: %w", name, err)
		}
	}

	return e.Write(path)
}
