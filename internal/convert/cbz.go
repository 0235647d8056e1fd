package convert

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeCBZ stores every image unmodified as a zip entry named by its file
// name. Images are already compressed, so entries use zip.Store.
func writeCBZ(j job, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(file)
	for _, name := range j.names {
		if err := addZipEntry(zw, filepath.Join(j.dir, name), name); err != nil {
			zw.Close()
			return fmt.Errorf("add %s: %w", name, err)
		}
	}
	return zw.Close()
}

func addZipEntry(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Store

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
