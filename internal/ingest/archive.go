package ingest

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// ReadTarGz walks a gzip-compressed tar archive, decoding each regular
// file entry to text and skipping every other entry type (directories,
// symlinks). Regular files are returned whatever their name or content;
// no check is made that a file holds a game record. This is the direct
// analogue of opening a ".tar.gz" bundle of game records.
func ReadTarGz(r io.Reader) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var texts []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		var buf strings.Builder
		if _, err := io.Copy(&buf, tr); err != nil {
			return nil, fmt.Errorf("read tar entry %q: %w", hdr.Name, err)
		}
		texts = append(texts, buf.String())
	}
	return texts, nil
}
