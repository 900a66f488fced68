package corpus

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OpenFile opens a corpus or table file, decompressing by extension
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		// *os.PathError already names the path
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".bz2"):
		return readCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CorpusPath returns the file holding a year's quotations.
// pattern contains a {year} placeholder, e.g. "quotes-{year}.json.bz2".
func CorpusPath(dir, pattern string, year int) string {
	name := strings.ReplaceAll(pattern, "{year}", strconv.Itoa(year))
	return filepath.Join(dir, name)
}
